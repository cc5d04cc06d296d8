package pak

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jpfielding/spritepak/pkg/util"
)

// EncryptedExt marks archives that are always stored encrypted
const EncryptedExt = ".epak"

// keyFor applies the extension convention: .epak needs a key, anything else is plaintext.
func keyFor(path string, key []byte) ([]byte, error) {
	if !strings.EqualFold(filepath.Ext(path), EncryptedExt) {
		return nil, nil
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrKeyRequired, path)
	}
	return key, nil
}

// Open reads and decodes the archive at path
func Open(path string, key []byte) (*Archive, error) {
	key, err := keyFor(path, key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	a, err := Decode(b, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("opened archive", "path", path, "sprites", a.Len(), "encrypted", key != nil)
	return a, nil
}

// Save encodes a and replaces path atomically: the bytes go to a temp file in
// the same directory which is then renamed over path.
func Save(a *Archive, path string, key []byte) error {
	key, err := keyFor(path, key)
	if err != nil {
		return err
	}
	b, err := Encode(a, WriteOptions{Key: key})
	if err != nil {
		return err
	}
	return writeFileAtomic(path, b)
}

func writeFileAtomic(path string, b []byte) (err error) {
	tmp := util.TempName(path)
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()
	if _, err = f.Write(b); err != nil {
		f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp, path); err != nil {
		return err
	}
	slog.Debug("saved archive", "path", path, "bytes", len(b))
	return nil
}
