package gesture

// UnknownLabel is returned for class ids outside the label table.
const UnknownLabel = "unknown"

// defaultLabelNames is the class order of the ten-gesture model.
var defaultLabelNames = []string{
	"middle_finger", "dislike", "fist", "four", "like",
	"one", "palm", "three", "two_up", "no_gesture",
}

// Labels maps class ids to human-readable gesture names.
// A Labels value is immutable once built.
type Labels struct {
	names []string
	index map[string]int
}

// NewLabels builds a label table from names ordered by class id.
func NewLabels(names []string) *Labels {
	l := &Labels{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	copy(l.names, names)
	for i, name := range l.names {
		if _, ok := l.index[name]; !ok {
			l.index[name] = i
		}
	}
	return l
}

// DefaultLabels returns the label table of the bundled model.
func DefaultLabels() *Labels {
	return NewLabels(defaultLabelNames)
}

// Label returns the name for classID, or UnknownLabel when out of range.
func (l *Labels) Label(classID int) string {
	if classID < 0 || classID >= len(l.names) {
		return UnknownLabel
	}
	return l.names[classID]
}

// Index returns the class id for name.
func (l *Labels) Index(name string) (int, bool) {
	i, ok := l.index[name]
	return i, ok
}

// Len returns the number of classes.
func (l *Labels) Len() int {
	return len(l.names)
}

// Names returns a copy of the names in class order.
func (l *Labels) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}
