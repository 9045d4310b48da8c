package synopsis

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/swdee/go-synopsis/tube"
)

// AllClassesLabel is the name of the synopsis combining every class
const AllClassesLabel = "all_classes"

// Labels are the class names the detector was trained on, indexed by class id
type Labels []string

// LoadLabels reads the labels used to train the detector from the given text
// file.  It should contain one label per line.
func LoadLabels(file string) (Labels, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	// create a scanner to read the file.
	scanner := bufio.NewScanner(f)

	var labels Labels

	// read and trim each line
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		labels = append(labels, line)
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return labels, nil
}

// Name returns the label of a class id, or class_<id> when it is unknown
func (l Labels) Name(classID int) string {
	if classID >= 0 && classID < len(l) && l[classID] != "" {
		return l[classID]
	}
	return fmt.Sprintf("class_%d", classID)
}

// GroupName returns the label a class group is written out as
func (l Labels) GroupName(key tube.GroupKey) string {
	if key.All {
		return AllClassesLabel
	}
	return l.Name(key.ClassID)
}

// ClassID looks up the class id of a label
func (l Labels) ClassID(name string) (int, bool) {
	for i, v := range l {
		if v == name {
			return i, true
		}
	}
	return -1, false
}
