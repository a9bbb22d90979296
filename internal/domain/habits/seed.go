package habits

var (
	allDays  = []int{0, 1, 2, 3, 4, 5, 6}
	weekdays = []int{1, 2, 3, 4, 5}
	weekends = []int{0, 6}
)

const (
	categoryDeviceFree = "📵 Device Free"
	categoryPresence   = "🏠 Presence & Connection"
	categoryCalm       = "😌 Kindness & Calm"
)

// SeedHabits is the starter set offered to a new user.
var SeedHabits = []HabitInput{
	{
		ID:          "seed-device-free-before-work",
		Name:        "Device Free Before Work",
		Description: "No phone or screens before leaving for work",
		Category:    categoryDeviceFree,
		ActiveDays:  weekdays,
	},
	{
		ID:          "seed-device-free-after-work",
		Name:        "Device Free After Work",
		Description: "Put the phone away when you get home",
		Category:    categoryDeviceFree,
		ActiveDays:  weekdays,
	},
	{
		ID:          "seed-device-free-weekend",
		Name:        "Device Free Weekend",
		Description: "Stay off devices and be present with family",
		Category:    categoryDeviceFree,
		ActiveDays:  weekends,
	},
	{
		ID:          "seed-device-free-dinner",
		Name:        "Device-Free Dinner",
		Description: "No devices at the dinner table",
		Category:    categoryPresence,
		ActiveDays:  allDays,
	},
	{
		ID:          "seed-1on1-with-child",
		Name:        "10-Minute 1-on-1 with Each Child",
		Description: "Dedicated one-on-one time with each child",
		Category:    categoryPresence,
		ActiveDays:  allDays,
	},
	{
		ID:          "seed-eye-contact-conversation",
		Name:        "Eye Contact Conversation",
		Description: "Have a meaningful face-to-face conversation",
		Category:    categoryPresence,
		ActiveDays:  allDays,
	},
	{
		ID:          "seed-family-activity",
		Name:        "Family Activity",
		Description: "Do something fun together as a family",
		Category:    categoryPresence,
		ActiveDays:  weekends,
	},
	{
		ID:          "seed-active-listening",
		Name:        "Active Listening Moment",
		Description: "Fully listen without interrupting or checking your phone",
		Category:    categoryPresence,
		ActiveDays:  allDays,
	},
	{
		ID:          "seed-morning-calm",
		Name:        "Morning Calm Routine",
		Description: "5 minutes of breathing or meditation to start the day",
		Category:    categoryCalm,
		ActiveDays:  allDays,
	},
	{
		ID:          "seed-no-raised-voice",
		Name:        "No Raised Voice Day",
		Description: "Stay calm and patient all day — no yelling",
		Category:    categoryCalm,
		ActiveDays:  allDays,
	},
}
