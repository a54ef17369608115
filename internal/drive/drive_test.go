package drive

import "testing"

func TestParseMountinfoLine(t *testing.T) {
	// Real-ish line from /proc/self/mountinfo, with an escaped space in the
	// mount point.
	line := `36 35 98:0 /mnt/data /mnt/my\040drive rw,noatime shared:1 - ext4 /dev/sda1 rw,errors=remount-ro`
	mi, ok := parseMountinfoLine(line)
	if !ok {
		t.Fatal("expected line to parse")
	}
	if mi.mountPoint != "/mnt/my drive" {
		t.Errorf("mountPoint = %q, want %q", mi.mountPoint, "/mnt/my drive")
	}
	if mi.fsType != "ext4" {
		t.Errorf("fsType = %q, want ext4", mi.fsType)
	}
	if mi.mountSource != "/dev/sda1" {
		t.Errorf("mountSource = %q, want /dev/sda1", mi.mountSource)
	}
}

func TestParseMountinfoLineMalformed(t *testing.T) {
	if _, ok := parseMountinfoLine("not a valid mountinfo line"); ok {
		t.Fatal("expected malformed line to fail to parse")
	}
}

func TestUnescapeMountinfo(t *testing.T) {
	cases := map[string]string{
		`foo\040bar`: "foo bar",
		`a\011b`:     "a\tb",
		`a\134b`:     `a\b`,
	}
	for in, want := range cases {
		if got := unescapeMountinfo(in); got != want {
			t.Errorf("unescapeMountinfo(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBestMountPicksLongestPrefix(t *testing.T) {
	mounts := []mountInfo{
		{mountPoint: "/"},
		{mountPoint: "/mnt"},
		{mountPoint: "/mnt/data"},
	}
	mi, ok := bestMount(mounts, "/mnt/data/photos/a.jpg")
	if !ok {
		t.Fatal("expected a match")
	}
	if mi.mountPoint != "/mnt/data" {
		t.Errorf("bestMount picked %q, want /mnt/data", mi.mountPoint)
	}
}

func TestBestMountDoesNotMatchSiblingPrefix(t *testing.T) {
	mounts := []mountInfo{
		{mountPoint: "/mnt"},
	}
	mi, ok := bestMount(mounts, "/mnt2/data/a.jpg")
	if ok {
		t.Errorf("expected no match for sibling path, got %+v", mi)
	}
}

func TestHasPathPrefixRoot(t *testing.T) {
	if !hasPathPrefix("/anything/at/all", "/") {
		t.Error("root should match everything")
	}
}
