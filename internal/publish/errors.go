package publish

import "errors"

var (
	// ErrCrossDevice indicates a build root on a different filesystem than the publication root.
	ErrCrossDevice = errors.New("build root and publication root are on different filesystems")
	// ErrPublishRace indicates a rename during the swap failed; the previous state was kept.
	ErrPublishRace = errors.New("publish rename failed")
	// ErrNoWorkingDir indicates a publish request for a document that was not built.
	ErrNoWorkingDir = errors.New("working directory missing")
)
