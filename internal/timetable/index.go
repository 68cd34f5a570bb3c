package timetable

import (
	"fmt"
	"sort"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// EntityKind selects which resource an availability query is about.
type EntityKind string

const (
	EntityTeacher EntityKind = "teacher"
	EntityClass   EntityKind = "class"
	EntityRoom    EntityKind = "room"
)

// ParseEntityKind validates a kind name.
func ParseEntityKind(raw string) (EntityKind, error) {
	switch EntityKind(raw) {
	case EntityTeacher, EntityClass, EntityRoom:
		return EntityKind(raw), nil
	}
	return "", fmt.Errorf("unknown entity kind %q", raw)
}

// Op is an incremental index update.
type Op int

const (
	OpAdd Op = iota + 1
	OpRemove
)

type entityKey struct {
	kind EntityKind
	id   string
	day  models.Day
}

type busySlot struct {
	Interval
	lessonID string
}

func (b busySlot) less(other busySlot) bool {
	if b.Start != other.Start {
		return b.Start < other.Start
	}
	if b.End != other.End {
		return b.End < other.End
	}
	return b.lessonID < other.lessonID
}

// AvailabilityIndex maps (entity, day) to busy intervals sorted by start time.
//
// The zero value is not usable; use NewIndex or Build. Methods prefixed With return new indexes and
// leave the receiver untouched; Apply mutates in place.
type AvailabilityIndex struct {
	buckets map[entityKey][]busySlot
	// shared is set once buckets may alias another index's slices; writes then copy.
	shared bool
}

// NewIndex returns an empty index.
func NewIndex() *AvailabilityIndex {
	return &AvailabilityIndex{buckets: make(map[entityKey][]busySlot)}
}

// Build indexes every lesson. It fails on the first malformed lesson.
func Build(lessons []models.Lesson) (*AvailabilityIndex, error) {
	idx := NewIndex()
	for _, lesson := range lessons {
		if err := idx.Apply(lesson, OpAdd); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// IsFree reports whether the entity has no busy interval overlapping [start, end) on day.
func (idx *AvailabilityIndex) IsFree(kind EntityKind, id string, day models.Day, start, end models.ClockTime) bool {
	return len(idx.Conflicts(kind, id, day, Interval{Start: start, End: end}, "")) == 0
}

// Conflicts returns ids of lessons occupying the entity during span, ignoring excludeID.
func (idx *AvailabilityIndex) Conflicts(kind EntityKind, id string, day models.Day, span Interval, excludeID string) []string {
	slots := idx.buckets[entityKey{kind: kind, id: id, day: day}]
	// slots at or after this position start no earlier than span.End and cannot overlap.
	limit := sort.Search(len(slots), func(i int) bool { return slots[i].Start >= span.End })
	var ids []string
	for _, slot := range slots[:limit] {
		if slot.lessonID == excludeID && excludeID != "" {
			continue
		}
		if slot.Overlaps(span) {
			ids = append(ids, slot.lessonID)
		}
	}
	return ids
}

// Busy returns the busy intervals of an entity on a day in start order.
func (idx *AvailabilityIndex) Busy(kind EntityKind, id string, day models.Day) []Interval {
	slots := idx.buckets[entityKey{kind: kind, id: id, day: day}]
	out := make([]Interval, len(slots))
	for i, slot := range slots {
		out[i] = slot.Interval
	}
	return out
}

// WithLessonApplied returns a new index reflecting one lesson added or removed. Only the buckets the
// lesson touches are copied; the receiver is not modified.
func (idx *AvailabilityIndex) WithLessonApplied(lesson models.Lesson, op Op) (*AvailabilityIndex, error) {
	next := &AvailabilityIndex{buckets: make(map[entityKey][]busySlot, len(idx.buckets)+3), shared: true}
	for k, v := range idx.buckets {
		next.buckets[k] = v
	}
	idx.shared = true
	if err := next.apply(lesson, op, true); err != nil {
		return nil, err
	}
	return next, nil
}

// Apply mutates the index in place. On error the index is unchanged.
func (idx *AvailabilityIndex) Apply(lesson models.Lesson, op Op) error {
	return idx.apply(lesson, op, idx.shared)
}

func (idx *AvailabilityIndex) apply(lesson models.Lesson, op Op, copyOnWrite bool) error {
	if err := checkShape(lesson); err != nil {
		return err
	}
	keys := lessonKeys(lesson)
	slot := busySlot{Interval: LessonInterval(lesson), lessonID: lesson.ID}

	switch op {
	case OpAdd:
		for _, key := range keys {
			idx.buckets[key] = insertSlot(idx.buckets[key], slot, copyOnWrite)
		}
	case OpRemove:
		positions := make([]int, len(keys))
		for i, key := range keys {
			pos := findSlot(idx.buckets[key], slot)
			if pos < 0 {
				return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("lesson %s is not indexed under %s %s", lesson.ID, key.kind, key.id))
			}
			positions[i] = pos
		}
		for i, key := range keys {
			remaining := removeSlot(idx.buckets[key], positions[i], copyOnWrite)
			if len(remaining) == 0 {
				delete(idx.buckets, key)
				continue
			}
			idx.buckets[key] = remaining
		}
	default:
		return fmt.Errorf("unknown index op %d", op)
	}
	return nil
}

// Clone returns an independent copy.
func (idx *AvailabilityIndex) Clone() *AvailabilityIndex {
	next := &AvailabilityIndex{buckets: make(map[entityKey][]busySlot, len(idx.buckets))}
	for k, v := range idx.buckets {
		next.buckets[k] = append([]busySlot(nil), v...)
	}
	return next
}

// Equal reports whether both indexes hold the same busy intervals for the same lessons.
func (idx *AvailabilityIndex) Equal(other *AvailabilityIndex) bool {
	if idx == nil || other == nil {
		return idx == other
	}
	if len(idx.buckets) != len(other.buckets) {
		return false
	}
	for key, slots := range idx.buckets {
		theirs, ok := other.buckets[key]
		if !ok || len(theirs) != len(slots) {
			return false
		}
		for i := range slots {
			if slots[i] != theirs[i] {
				return false
			}
		}
	}
	return true
}

func lessonKeys(l models.Lesson) []entityKey {
	keys := []entityKey{
		{kind: EntityTeacher, id: l.TeacherID, day: l.Day},
		{kind: EntityClass, id: l.ClassID, day: l.Day},
	}
	if room := l.Room(); room != "" {
		keys = append(keys, entityKey{kind: EntityRoom, id: room, day: l.Day})
	}
	return keys
}

func insertSlot(slots []busySlot, slot busySlot, copyOnWrite bool) []busySlot {
	pos := sort.Search(len(slots), func(i int) bool { return slot.less(slots[i]) })
	if copyOnWrite {
		out := make([]busySlot, 0, len(slots)+1)
		out = append(out, slots[:pos]...)
		out = append(out, slot)
		return append(out, slots[pos:]...)
	}
	slots = append(slots, busySlot{})
	copy(slots[pos+1:], slots[pos:])
	slots[pos] = slot
	return slots
}

func findSlot(slots []busySlot, slot busySlot) int {
	for i, s := range slots {
		if s == slot {
			return i
		}
	}
	return -1
}

func removeSlot(slots []busySlot, pos int, copyOnWrite bool) []busySlot {
	if copyOnWrite {
		out := make([]busySlot, 0, len(slots)-1)
		out = append(out, slots[:pos]...)
		return append(out, slots[pos+1:]...)
	}
	return append(slots[:pos], slots[pos+1:]...)
}
