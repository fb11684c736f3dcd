package domain

// MediaFile represents the playable asset a download produces. The caller
// owns it; the buffering monitor assigns the on-disk path exactly once, at
// the moment the selected file is resolved.
type MediaFile struct {
	Title    string
	Kind     MediaKind
	filePath string
}

// SetFilePath records where the playable file lives on disk. Only the first
// non-empty assignment sticks.
func (m *MediaFile) SetFilePath(path string) {
	if m.filePath == "" && path != "" {
		m.filePath = path
	}
}

func (m *MediaFile) FilePath() string {
	return m.filePath
}
