package findfile

import (
	"io/fs"

	"github.com/redactyl/tfcprobe/internal/regex"
	"github.com/redactyl/tfcprobe/internal/types"
	"github.com/sirupsen/logrus"
)

// directionAllows reports whether an entry name may be descended into.
func directionAllows(d types.Direction, name string) bool {
	switch d {
	case types.DirectionDown:
		return name != "." && name != ".."
	case types.DirectionUp:
		return name == ".."
	}
	return false
}

// followAllows reports whether an entry of the given lstat type may be
// descended into. The legacy "files and directories" value only ever followed
// directories and still does.
func followAllows(f types.Follow, mode fs.FileMode) bool {
	isDir := mode.IsDir()
	isLink := mode&fs.ModeSymlink != 0
	if !isDir && !isLink {
		return false
	}
	switch f {
	case types.FollowSymlinksAndDirs:
		return true
	case types.FollowDirsOnly, types.FollowLegacyFilesAndDirs:
		return isDir
	case types.FollowSymlinksOnly:
		return isLink
	}
	return false
}

type nameMatcher interface {
	match(name string) bool
}

type literalName string

func (l literalName) match(name string) bool { return string(l) == name }

type patternName struct {
	re  regex.Matcher
	log logrus.FieldLogger
}

func (p patternName) match(name string) bool {
	ok, err := p.re.Match(name)
	if err != nil {
		p.log.WithError(err).WithField("filename", name).Warn("filename pattern evaluation failed")
		return false
	}
	return ok
}
