package util

import (
	"crypto/md5"
	"path/filepath"

	"github.com/google/uuid"
)

// ContentID derives a uuid from the md5 of value. Identical sprite images share an id.
func ContentID(value []byte) string {
	hash := md5.Sum(value)
	id, err := uuid.FromBytes(hash[:])
	if err != nil {
		return ""
	}
	return id.String()
}

// TempName returns a hidden, uniquely named sibling of path suitable for an atomic rename onto path.
func TempName(path string) string {
	dir, base := filepath.Split(path)
	return filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")
}
