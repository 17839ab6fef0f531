package schedule

// Source records which input shape a weekly availability was resolved from,
// so callers can tell the system default apart from data the teacher actually
// configured.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceFlatList Source = "flat_list"
	SourceDefault  Source = "default"
)

// BusinessWeekdays are the days a flat slot list is replicated across.
var BusinessWeekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// DefaultSlots is the system-wide fallback slot template for teachers with no
// configured availability.
var DefaultSlots = []string{
	"9:00 AM - 10:00 AM",
	"10:00 AM - 11:00 AM",
	"2:00 PM - 3:00 PM",
	"4:00 PM - 5:00 PM",
}

type DayAvailability struct {
	Weekday string
	Slots   []string
}

type WeeklyAvailability struct {
	Days   []DayAvailability
	Source Source
}

// ResolveAvailability normalizes a teacher's availability into one canonical
// weekly shape. It accepts a per-day structure, a flat list of slot labels, or
// nothing at all, and always succeeds: a teacher with no usable data gets the
// system default so callers always have something to offer.
func ResolveAvailability(weekly map[string][]string, flat []string) WeeklyAvailability {
	if days := normalizeWeekly(weekly); len(days) > 0 {
		return WeeklyAvailability{Days: days, Source: SourceExplicit}
	}

	if len(flat) > 0 {
		days := make([]DayAvailability, 0, len(BusinessWeekdays))
		for _, day := range BusinessWeekdays {
			slots := make([]string, len(flat))
			copy(slots, flat)
			days = append(days, DayAvailability{Weekday: day, Slots: slots})
		}
		return WeeklyAvailability{Days: days, Source: SourceFlatList}
	}

	days := make([]DayAvailability, 0, len(BusinessWeekdays))
	for _, day := range BusinessWeekdays {
		slots := make([]string, len(DefaultSlots))
		copy(slots, DefaultSlots)
		days = append(days, DayAvailability{Weekday: day, Slots: slots})
	}
	return WeeklyAvailability{Days: days, Source: SourceDefault}
}

// normalizeWeekly canonicalizes weekday keys and keeps week order. Unknown
// day names and empty slot lists are dropped rather than reported; bad input
// here degrades to the next fallback shape instead of failing.
func normalizeWeekly(weekly map[string][]string) []DayAvailability {
	if len(weekly) == 0 {
		return nil
	}

	byDay := make(map[string][]string, len(weekly))
	for name, slots := range weekly {
		canon, err := NormalizeWeekday(name)
		if err != nil || len(slots) == 0 {
			continue
		}
		byDay[canon] = slots
	}

	var days []DayAvailability
	for _, day := range Weekdays {
		if slots, ok := byDay[day]; ok {
			days = append(days, DayAvailability{Weekday: day, Slots: slots})
		}
	}
	return days
}

// SlotsFor returns the slot labels offered on the given canonical weekday.
func (w WeeklyAvailability) SlotsFor(weekday string) []string {
	for _, day := range w.Days {
		if day.Weekday == weekday {
			return day.Slots
		}
	}
	return nil
}

// HasSlot reports whether the exact slot label is offered on the weekday.
// Labels are opaque and compared for membership, not parsed as time ranges.
func (w WeeklyAvailability) HasSlot(weekday, slot string) bool {
	for _, s := range w.SlotsFor(weekday) {
		if s == slot {
			return true
		}
	}
	return false
}
