package version

import "fmt"

const (
	// JournalMajor and JournalMinor version the journal's sqlite schema.
	JournalMajor = 0
	JournalMinor = 1
)

var (
	ModuleVersion  = SemVer{0, 1, 0}
	JournalVersion = SemVer{JournalMajor, JournalMinor, 0}
)

type SemVer struct {
	Major int
	Minor int
	Patch int
}

func (v SemVer) String() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}
