package secondary

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalidRecord is returned when a record handed to a RecordSink is missing required fields.
var ErrInvalidRecord = errors.New("invalid record")

// Section names.
const (
	SectionNBack = "n-back"
	SectionPrime = "prime"
)

// Record is one row handed to a RecordSink.
type Record interface {
	Section() string
	Header() []string
	Row() []string
	Validate() error
	Meta() SessionMeta
}

// SessionMeta is the session-level data copied into every record when it is built.
type SessionMeta struct {
	SessionID      string
	Participant    string
	AgeGroup       string
	Age            int
	Date           string
	BlocksReversed bool
	PrimeListName  string
	NBackTask      bool
}

// Meta returns the session metadata of a record.
func (m SessionMeta) Meta() SessionMeta { return m }

func (m SessionMeta) validate() error {
	if m.SessionID == "" {
		return fmt.Errorf("%w: missing session ID", ErrInvalidRecord)
	}
	if m.Participant == "" {
		return fmt.Errorf("%w: missing participant", ErrInvalidRecord)
	}
	if m.Date == "" {
		return fmt.Errorf("%w: missing date", ErrInvalidRecord)
	}
	return nil
}

var metaHeader = []string{"section", "session", "participant", "age group", "date", "blocks reversed", "prime list name"}

func (m SessionMeta) row(section string) []string {
	return []string{section, m.SessionID, m.Participant, m.AgeGroup, m.Date, flag(m.BlocksReversed), m.PrimeListName}
}

// NBackRecord is one scored n-back trial.
type NBackRecord struct {
	SessionMeta
	PrimeName        string
	NBack            int
	OrderSet         int
	Position         int // 1-based
	ImageID          int
	NBackImageID     int
	HasNBackImage    bool
	Lure             bool
	LureKind         string
	ExpectedResponse bool
	UserResponse     bool
	ReactionTime     time.Duration
	TimedOut         bool
	Correct          bool
}

func (r *NBackRecord) Section() string { return SectionNBack }

func (r *NBackRecord) Header() []string {
	return append(append([]string{}, metaHeader...),
		"prime image id", "n-back type", "order set", "position in block",
		"image id", "n-back image", "lure", "lure kind",
		"expected response", "user response", "reaction time", "correct")
}

func (r *NBackRecord) Row() []string {
	nBackImage := ""
	if r.HasNBackImage {
		nBackImage = strconv.Itoa(r.NBackImageID)
	}
	rt := ""
	if !r.TimedOut {
		rt = seconds(r.ReactionTime)
	}
	return append(r.SessionMeta.row(SectionNBack),
		r.PrimeName, strconv.Itoa(r.NBack), strconv.Itoa(r.OrderSet), strconv.Itoa(r.Position),
		strconv.Itoa(r.ImageID), nBackImage, flag(r.Lure), r.LureKind,
		flag(r.ExpectedResponse), flag(r.UserResponse), rt, flag(r.Correct))
}

func (r *NBackRecord) Validate() error {
	if err := r.SessionMeta.validate(); err != nil {
		return err
	}
	switch {
	case r.NBack < 1 || r.NBack > 3:
		return fmt.Errorf("%w: n-back type %d", ErrInvalidRecord, r.NBack)
	case r.Position < 1:
		return fmt.Errorf("%w: position %d", ErrInvalidRecord, r.Position)
	case r.OrderSet < 1:
		return fmt.Errorf("%w: order set %d", ErrInvalidRecord, r.OrderSet)
	case r.PrimeName == "":
		return fmt.Errorf("%w: missing prime image id", ErrInvalidRecord)
	case r.Lure != (r.LureKind != ""):
		return fmt.Errorf("%w: lure flag and lure kind disagree", ErrInvalidRecord)
	case r.UserResponse == r.TimedOut:
		return fmt.Errorf("%w: user response and timeout disagree", ErrInvalidRecord)
	}
	return nil
}

// PrimeRecord is one answer of the prime recognition task.
type PrimeRecord struct {
	SessionMeta
	ImageName    string
	Position     int // 1-based
	Level        int // clarity level at which the participant answered
	Answer       string
	ReactionTime time.Duration
	TimedOut     bool
}

func (r *PrimeRecord) Section() string { return SectionPrime }

func (r *PrimeRecord) Header() []string {
	return append(append([]string{}, metaHeader...),
		"n-back task", "image name", "position", "level", "answer", "reaction time")
}

func (r *PrimeRecord) Row() []string {
	rt := "N/A"
	if !r.TimedOut {
		rt = seconds(r.ReactionTime)
	}
	return append(r.SessionMeta.row(SectionPrime),
		flag(r.NBackTask), r.ImageName, strconv.Itoa(r.Position), strconv.Itoa(r.Level), r.Answer, rt)
}

func (r *PrimeRecord) Validate() error {
	if err := r.SessionMeta.validate(); err != nil {
		return err
	}
	switch {
	case r.ImageName == "":
		return fmt.Errorf("%w: missing image name", ErrInvalidRecord)
	case r.Position < 1:
		return fmt.Errorf("%w: position %d", ErrInvalidRecord, r.Position)
	case r.Level < 1:
		return fmt.Errorf("%w: level %d", ErrInvalidRecord, r.Level)
	}
	return nil
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 4, 64)
}
