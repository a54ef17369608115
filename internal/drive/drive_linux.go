//go:build linux

package drive

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LinuxProber resolves drive metadata from /proc/self/mountinfo and the
// /dev/disk/by-uuid and /dev/disk/by-label reverse-lookup directories.
type LinuxProber struct{}

// NewProber returns the platform Prober — on Linux, LinuxProber.
func NewProber() Prober { return LinuxProber{} }

func (LinuxProber) ProbeForPath(path string) (Info, error) {
	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		canonical = path
	}

	mounts, err := readMountinfo("/proc/self/mountinfo")
	if err != nil {
		return Info{}, fmt.Errorf("drive: read mountinfo: %w", err)
	}

	mi, found := bestMount(mounts, canonical)
	if !found {
		return Info{}, nil
	}

	info := Info{FSType: mi.fsType}
	if strings.HasPrefix(mi.mountSource, "/dev/") {
		devPath, err := filepath.EvalSymlinks(mi.mountSource)
		if err != nil {
			devPath = mi.mountSource
		}
		if uuid, err := findDiskID(devPath, "/dev/disk/by-uuid"); err == nil {
			info.ID = uuid
		}
		if label, err := findDiskID(devPath, "/dev/disk/by-label"); err == nil {
			info.Label = label
		}
	}
	return info, nil
}

func readMountinfo(path string) ([]mountInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var mounts []mountInfo
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if mi, ok := parseMountinfoLine(scanner.Text()); ok {
			mounts = append(mounts, mi)
		}
	}
	return mounts, scanner.Err()
}

// findDiskID reverse-resolves dev (a canonical device path like /dev/sda1)
// to the symlink name in dir (/dev/disk/by-uuid or /dev/disk/by-label)
// whose target canonicalizes to the same device.
func findDiskID(dev, dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		linkPath := filepath.Join(dir, e.Name())
		target, err := filepath.EvalSymlinks(linkPath)
		if err != nil {
			continue
		}
		if target == dev {
			return e.Name(), nil
		}
	}
	return "", fmt.Errorf("drive: no entry in %s matches %s", dir, dev)
}
