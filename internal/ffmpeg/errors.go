package ffmpeg

import (
	"errors"
	"regexp"
)

// Sentinel errors for the failure classes framecopy reports on. Classify
// maps ffmpeg/ffprobe stderr onto them.
var (
	ErrNoSuchFile     = errors.New("no such file or directory")
	ErrInvalidData    = errors.New("invalid or unsupported media data")
	ErrPermission     = errors.New("permission denied")
	ErrUnknownEncoder = errors.New("encoder not available")
	ErrEncoderInit    = errors.New("encoder failed to initialize")
)

// Pre-compiled regexes for classifying stderr. Checked in order by
// Classify; the first match wins.
var classifiers = []struct {
	re  *regexp.Regexp
	err error
}{
	{regexp.MustCompile(`(?i)No such file or directory|does not exist`), ErrNoSuchFile},
	{regexp.MustCompile(`(?i)Permission denied|Read-only file system|Operation not permitted`), ErrPermission},
	{regexp.MustCompile(`(?i)Unknown encoder|Encoder not found|Unrecognized option 'c:v'`), ErrUnknownEncoder},
	{regexp.MustCompile(`(?i)Error while opening encoder|Error initializing output stream|` +
		`Could not open encoder|Could not write header|Error setting option`), ErrEncoderInit},
	{regexp.MustCompile(`(?i)Invalid data found when processing input|moov atom not found|` +
		`could not find codec parameters|EBML header parsing failed|` +
		`Output file #0 does not contain any stream|Invalid argument`), ErrInvalidData},
}

// Classify returns the sentinel error matching stderr, or nil when none does.
func Classify(stderr string) error {
	for _, c := range classifiers {
		if c.re.MatchString(stderr) {
			return c.err
		}
	}
	return nil
}
