package common

import "testing"

func TestApplyVersionFile_FillsDefaultsOnly(t *testing.T) {
	defer func(v, b, c string) { Version, Build, GitCommit = v, b, c }(Version, Build, GitCommit)
	Version, Build, GitCommit = "dev", "unknown", "abc1234"

	applyVersionFile("# release metadata\nversion: 1.4.0\nbuild=2026-08-27T10:00:00Z\ncommit: ffffff\n\nnot a pair\n")

	if Version != "1.4.0" {
		t.Errorf("expected version 1.4.0, got %q", Version)
	}
	if Build != "2026-08-27T10:00:00Z" {
		t.Errorf("expected build from file, got %q", Build)
	}
	// Commit was linked in, so the file must not override it
	if GitCommit != "abc1234" {
		t.Errorf("expected linked commit kept, got %q", GitCommit)
	}
}

func TestApplyVersionFile_IgnoresEmptyValues(t *testing.T) {
	defer func(v, b, c string) { Version, Build, GitCommit = v, b, c }(Version, Build, GitCommit)
	Version, Build, GitCommit = "dev", "unknown", "unknown"

	applyVersionFile("version:\nbuild: \n")

	if Version != "dev" || Build != "unknown" {
		t.Errorf("blank values must be ignored, got version=%q build=%q", Version, Build)
	}
}

func TestBuildInfo_String(t *testing.T) {
	bi := BuildInfo{Version: "1.4.0", Build: "2026-08-27", Commit: "abc1234"}
	want := "1.4.0 (build 2026-08-27, commit abc1234)"
	if got := bi.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
