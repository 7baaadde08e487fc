package savers

import (
	"fmt"
	"os"
)

// fileEnumerator enumerates filenames
type fileEnumerator struct {
	i         int
	name      string
	extension string
}

// filename returns the name of the next consecutive enumerated file
func (f *fileEnumerator) filename() string {
	name := fmt.Sprintf("%v%v%v", f.name, f.i, f.extension)
	f.i++
	return name
}

// FilenameEnumerator returns a function which will return filenames
// with a counter integer suffix. The first call returns the filename
// with suffix start, and each later call returns a filename with a
// suffix one higher than on the previous call. The filename parameter
// is the full filename with its path, while the extension parameter
// determines the file extension.
func FilenameEnumerator(start int, filename, extension string) func() string {
	enum := fileEnumerator{i: start, name: filename, extension: extension}

	return enum.filename
}

// NextFree returns the smallest counter suffix i such that the file
// filename + i + extension does not exist
func NextFree(filename, extension string) (int, error) {
	for i := 0; ; i++ {
		_, err := os.Stat(fmt.Sprintf("%v%v%v", filename, i, extension))
		if os.IsNotExist(err) {
			return i, nil
		} else if err != nil {
			return 0, fmt.Errorf("nextFree: %v", err)
		}
	}
}
