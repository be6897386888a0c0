package manager

import (
	"encoding/json"
	"fmt"

	"github.com/blackwell-systems/envoic/internal/artifacts"
	"github.com/blackwell-systems/envoic/internal/detector"
)

// ItemKind tags which record an Item carries.
type ItemKind int

const (
	ItemEnvironment ItemKind = iota
	ItemArtifact
)

func (k ItemKind) String() string {
	switch k {
	case ItemEnvironment:
		return "environment"
	case ItemArtifact:
		return "artifact"
	default:
		panic(fmt.Sprintf("manager: unknown item kind %d", int(k)))
	}
}

// Item is one deletion candidate: either an environment or an artifact.
type Item struct {
	Kind        ItemKind
	Environment *detector.Environment
	Artifact    *artifacts.Artifact
}

// EnvironmentItem wraps an environment record.
func EnvironmentItem(env detector.Environment) Item {
	return Item{Kind: ItemEnvironment, Environment: &env}
}

// ArtifactItem wraps an artifact record.
func ArtifactItem(a artifacts.Artifact) Item {
	return Item{Kind: ItemArtifact, Artifact: &a}
}

// Path is the filesystem path the item refers to.
func (it Item) Path() string {
	switch it.Kind {
	case ItemEnvironment:
		return it.Environment.Path
	case ItemArtifact:
		return it.Artifact.Path
	default:
		panic(fmt.Sprintf("manager: unknown item kind %d", int(it.Kind)))
	}
}

// Size is the recorded size, or nil when it was not computed.
func (it Item) Size() *int64 {
	switch it.Kind {
	case ItemEnvironment:
		return it.Environment.SizeBytes
	case ItemArtifact:
		return it.Artifact.SizeBytes
	default:
		panic(fmt.Sprintf("manager: unknown item kind %d", int(it.Kind)))
	}
}

// KnownSize is Size with unknown treated as zero.
func (it Item) KnownSize() int64 {
	if s := it.Size(); s != nil {
		return *s
	}
	return 0
}

// MarshalJSON emits the wrapped record with a "kind" discriminator.
func (it Item) MarshalJSON() ([]byte, error) {
	switch it.Kind {
	case ItemEnvironment:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			*detector.Environment
		}{it.Kind.String(), it.Environment})
	case ItemArtifact:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			*artifacts.Artifact
		}{it.Kind.String(), it.Artifact})
	default:
		panic(fmt.Sprintf("manager: unknown item kind %d", int(it.Kind)))
	}
}

// EnvironmentItems wraps each environment.
func EnvironmentItems(envs []detector.Environment) []Item {
	items := make([]Item, 0, len(envs))
	for _, e := range envs {
		items = append(items, EnvironmentItem(e))
	}
	return items
}

// ArtifactItems wraps each artifact.
func ArtifactItems(list []artifacts.Artifact) []Item {
	items := make([]Item, 0, len(list))
	for _, a := range list {
		items = append(items, ArtifactItem(a))
	}
	return items
}
