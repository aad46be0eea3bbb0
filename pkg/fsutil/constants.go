package fsutil

// File and directory permission constants.
const (
	FileModeDefault = 0o644 // -rw-r--r--
	FileModeSecure  = 0o640 // -rw-r-----

	DirModeDefault = 0o755 // drwxr-xr-x
	DirModeSecure  = 0o750 // drwxr-x---

	// PartialSuffix marks a file that is still being received.
	PartialSuffix = ".downloading"
)
