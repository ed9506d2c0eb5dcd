package upload

import (
	"github.com/gabriel-vasile/mimetype"
)

// acceptedMIME lists, per extension, the detected types that count as a match.
// Detection walks up the type hierarchy, so a generic container type is
// enough when the specific one is not recognized.
var acceptedMIME = map[string][]string{
	"pdf":  {"application/pdf"},
	"docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	"doc":  {"application/msword", "application/x-ole-storage"},
}

// sniff detects the content type of data and reports whether it is plausible
// for a file with extension ext.
func sniff(ext string, data []byte) (string, bool) {
	detected := mimetype.Detect(data)
	want := acceptedMIME[ext]

	for m := detected; m != nil; m = m.Parent() {
		for _, w := range want {
			if m.Is(w) {
				return detected.String(), true
			}
		}
	}
	return detected.String(), false
}
