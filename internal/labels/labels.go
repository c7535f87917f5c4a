// Package labels holds class-name tables addressed by network class index.
package labels

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Table is an ordered list of class names; the slice index is the class id.
type Table []string

// VOC returns the 21 PASCAL VOC classes MobileNet-SSD was trained on.
func VOC() Table {
	return Table{
		"background", "aeroplane", "bicycle", "bird", "boat",
		"bottle", "bus", "car", "cat", "chair", "cow", "diningtable",
		"dog", "horse", "motorbike", "person", "pottedplant", "sheep",
		"sofa", "train", "tvmonitor",
	}
}

// Label returns the name for class id i, or "Class #i" when i is not
// addressable in the table.
func (t Table) Label(i int) string {
	if i < 0 || i >= len(t) {
		return fmt.Sprintf("Class #%d", i)
	}
	return t[i]
}

// LoadFile reads one class name per line. Empty lines are kept so that line
// numbers keep matching class ids.
func LoadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("File %s not found", path)
		}
		return nil, errors.Wrapf(err, "open classes file %s", path)
	}
	defer f.Close()

	var t Table
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		t = append(t, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read classes file %s", path)
	}
	return t, nil
}
