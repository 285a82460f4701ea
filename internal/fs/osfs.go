package fs

import (
	"os"
)

// OSFS is the FS backed by the local operating system.
type OSFS struct {
	backoff Backoff
}

func New() *OSFS {
	return &OSFS{backoff: DefaultBackoff}
}

func (o *OSFS) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

func (o *OSFS) Stat(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return infoFrom(path, st), nil
}

func infoFrom(path string, st os.FileInfo) FileInfo {
	return FileInfo{
		Path:  path,
		Name:  st.Name(),
		Size:  st.Size(),
		Mode:  st.Mode().Perm(),
		MTime: st.ModTime(),
		ID:    fileIDOf(st),
		IsDir: st.IsDir(),
	}
}

func (o *OSFS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (o *OSFS) Remove(path string) error {
	return os.Remove(path)
}
