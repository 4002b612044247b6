package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBase() *BaseLibretto {
	return &BaseLibretto{
		Version: "1.0",
		Opera: Opera{
			Title:    "Le nozze di Figaro",
			Composer: "Wolfgang Amadeus Mozart",
			Language: "it",
		},
		Numbers: []MusicalNumber{
			{
				NumberID: "no-1-duettino",
				Label:    "No. 1 - Duettino",
				Type:     NumberDuet,
				Act:      "1",
				Scene:    "1",
				Segments: []Segment{
					{SegmentID: "no-1-001", Character: "FIGARO", Text: "Cinque... dieci... venti..."},
					{SegmentID: "no-1-002", Character: "SUSANNA", Text: "Ora sì ch'io son contenta."},
				},
			},
			{
				NumberID: "rec-1a",
				Label:    "Recitativo",
				Type:     NumberRecitative,
				Act:      "1",
				Segments: []Segment{
					{SegmentID: "rec-1a-001", Character: "FIGARO", Text: "Bravo, signor padrone!"},
				},
			},
		},
	}
}

func TestIndexPositions(t *testing.T) {
	idx := NewIndex(testBase())

	require.Equal(t, 3, idx.Len())
	assert.Equal(t, "no-1-001", idx.At(0).Segment.SegmentID)
	assert.Equal(t, "rec-1a-001", idx.At(2).Segment.SegmentID)

	ref, ok := idx.ByID("no-1-002")
	require.True(t, ok)
	assert.Equal(t, 1, ref.Pos)
	assert.Equal(t, "no-1-duettino", ref.Number.NumberID)

	_, ok = idx.ByID("missing")
	assert.False(t, ok)
}

func TestIndexNumberBounds(t *testing.T) {
	idx := NewIndex(testBase())

	start, ok := idx.NumberStart("rec-1a")
	require.True(t, ok)
	assert.Equal(t, 2, start)

	end, ok := idx.NumberEnd("no-1-duettino")
	require.True(t, ok)
	assert.Equal(t, 2, end)

	_, ok = idx.NumberStart("no-99")
	assert.False(t, ok)
}

func TestEffectiveType(t *testing.T) {
	base := testBase()
	number := &base.Numbers[0]

	inherited := &number.Segments[0]
	assert.Equal(t, NumberDuet, inherited.EffectiveType(number))

	overridden := &Segment{SegmentID: "x", Type: NumberRecitative}
	assert.Equal(t, NumberRecitative, overridden.EffectiveType(number))
}

func TestOverlayClone(t *testing.T) {
	overlay := &TimingOverlay{
		Version:         "1.0",
		BaseLibrettoRef: "base.libretto.json",
		TrackTimings: []TrackTiming{
			{
				TrackTitle:      "Track 1",
				DurationSeconds: 100,
				NumberIDs:       []string{"no-1-duettino"},
			},
		},
	}

	clone := overlay.Clone()
	clone.TrackTimings[0].StartSegmentID = "no-1-001"
	clone.TrackTimings[0].NumberIDs[0] = "changed"

	assert.Empty(t, overlay.TrackTimings[0].StartSegmentID)
	assert.Equal(t, "no-1-duettino", overlay.TrackTimings[0].NumberIDs[0])
}

func TestSegmentAt(t *testing.T) {
	track := &TimedTrack{
		Segments: []TimedSegment{
			{Start: 0, End: 10, Character: "FIGARO"},
			{Start: 10, End: 25, Character: "SUSANNA"},
		},
	}

	assert.Nil(t, track.SegmentAt(-1))
	assert.Equal(t, "FIGARO", track.SegmentAt(5).Character)
	assert.Equal(t, "SUSANNA", track.SegmentAt(10).Character)
	assert.Equal(t, "SUSANNA", track.SegmentAt(500).Character)
}
