package domain

// BaseLibretto is the untimed, recording-independent text and structure of
// an opera. Timing overlays reference its segments by id; the timing
// pipeline never mutates it.
type BaseLibretto struct {
	Version string          `json:"version"`
	Opera   Opera           `json:"opera"`
	Cast    []CastMember    `json:"cast,omitempty"`
	Numbers []MusicalNumber `json:"numbers"`
}

// Opera holds descriptive metadata about the work itself.
type Opera struct {
	Title               string `json:"title"`
	Composer            string `json:"composer"`
	Librettist          string `json:"librettist,omitempty"`
	Language            string `json:"language"`
	TranslationLanguage string `json:"translation_language,omitempty"`
	Year                int    `json:"year,omitempty"`
}

// CastMember is an entry in the opera's cast list.
type CastMember struct {
	Character   string `json:"character"`
	ShortName   string `json:"short_name,omitempty"`
	VoiceType   string `json:"voice_type,omitempty"`
	Description string `json:"description,omitempty"`
}

// NumberType classifies a musical number.
type NumberType string

const (
	NumberAria         NumberType = "aria"
	NumberDuet         NumberType = "duet"
	NumberTrio         NumberType = "trio"
	NumberChorus       NumberType = "chorus"
	NumberRecitative   NumberType = "recitative"
	NumberInstrumental NumberType = "instrumental"
	NumberFinale       NumberType = "finale"
)

// MusicalNumber is a structural grouping of consecutive segments (aria,
// duet, recitative, etc.). Numbers are ordered globally by act, scene and
// appearance; their order in the Numbers slice is that global order.
type MusicalNumber struct {
	NumberID string     `json:"number_id"`
	Label    string     `json:"label"`
	Type     NumberType `json:"type"`
	Act      string     `json:"act"`
	Scene    string     `json:"scene,omitempty"`
	Segments []Segment  `json:"segments"`
}

// Segment is the smallest timed textual unit: one character's (or
// ensemble's) lines. Type, when set, overrides the owning number's type.
type Segment struct {
	SegmentID   string     `json:"segment_id"`
	Type        NumberType `json:"type,omitempty"`
	Character   string     `json:"character,omitempty"`
	Text        string     `json:"text,omitempty"`
	Translation string     `json:"translation,omitempty"`
	Direction   string     `json:"direction,omitempty"`
	Group       string     `json:"group,omitempty"`
}

// EffectiveType returns the segment's own type when set, otherwise the
// owning number's type.
func (s *Segment) EffectiveType(number *MusicalNumber) NumberType {
	if s.Type != "" {
		return s.Type
	}
	return number.Type
}

// FindNumber looks up a musical number by id.
func (b *BaseLibretto) FindNumber(numberID string) *MusicalNumber {
	for i := range b.Numbers {
		if b.Numbers[i].NumberID == numberID {
			return &b.Numbers[i]
		}
	}
	return nil
}

// SegmentRef locates one segment within the global segment sequence.
type SegmentRef struct {
	// Pos is the segment's fixed global sequence position, derived from
	// its number's position and its order within the number.
	Pos     int
	Number  *MusicalNumber
	Segment *Segment
}

// Index is a positional view over a base libretto's segments, built once
// and shared by the pipeline stages.
type Index struct {
	refs      []SegmentRef
	byID      map[string]int
	numbers   map[string]*MusicalNumber
	numberPos map[string]int
}

// NewIndex builds the global segment index for a base libretto.
func NewIndex(base *BaseLibretto) *Index {
	idx := &Index{
		byID:      make(map[string]int),
		numbers:   make(map[string]*MusicalNumber),
		numberPos: make(map[string]int),
	}
	for i := range base.Numbers {
		number := &base.Numbers[i]
		idx.numbers[number.NumberID] = number
		idx.numberPos[number.NumberID] = len(idx.refs)
		for j := range number.Segments {
			seg := &number.Segments[j]
			idx.byID[seg.SegmentID] = len(idx.refs)
			idx.refs = append(idx.refs, SegmentRef{
				Pos:     len(idx.refs),
				Number:  number,
				Segment: seg,
			})
		}
	}
	return idx
}

// Len returns the total number of segments in the libretto.
func (idx *Index) Len() int {
	return len(idx.refs)
}

// At returns the segment at the given global position.
func (idx *Index) At(pos int) SegmentRef {
	return idx.refs[pos]
}

// ByID looks up a segment by id.
func (idx *Index) ByID(segmentID string) (SegmentRef, bool) {
	pos, ok := idx.byID[segmentID]
	if !ok {
		return SegmentRef{}, false
	}
	return idx.refs[pos], true
}

// Number looks up a musical number by id.
func (idx *Index) Number(numberID string) *MusicalNumber {
	return idx.numbers[numberID]
}

// NumberStart returns the global position of a number's first segment.
// The boolean is false when the number id is unknown.
func (idx *Index) NumberStart(numberID string) (int, bool) {
	pos, ok := idx.numberPos[numberID]
	return pos, ok
}

// NumberEnd returns the global position one past the last segment of the
// given number.
func (idx *Index) NumberEnd(numberID string) (int, bool) {
	number, ok := idx.numbers[numberID]
	if !ok {
		return 0, false
	}
	start := idx.numberPos[numberID]
	return start + len(number.Segments), true
}
