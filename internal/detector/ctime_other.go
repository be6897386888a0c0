//go:build !linux && !darwin && !windows

package detector

import (
	"os"
	"time"
)

func createdTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
