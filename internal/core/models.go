package core

// Account is a registered user identity. Accounts are stored as a single JSON
// array under the "users" key; the field names below are the stored format and
// must not change. Passwords are stored and compared as plaintext to stay
// compatible with existing data.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Category classifies an event.
type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
	CategoryStudy    Category = "study"
	CategoryMeeting  Category = "meeting"
	CategoryOther    Category = "other"
)

// Categories lists all valid event categories.
var Categories = []Category{
	CategoryPersonal,
	CategoryWork,
	CategoryStudy,
	CategoryMeeting,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Event is a calendar item owned by exactly one account. Events are stored as
// one JSON array per user under "events_{userId}".
type Event struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Category     Category `json:"category"`
	Participants string   `json:"participants"`
	Date         string   `json:"date"` // ISO-8601
}

// MediaType distinguishes photo and video entries.
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
)

// Ext returns the file extension used for persisted media of this type.
func (t MediaType) Ext() string {
	if t == MediaVideo {
		return "mp4"
	}
	return "jpg"
}

// Location is a GPS coordinate captured alongside a media entry.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MediaEntry is one captured photo or video plus its annotation. Each entry
// owns exactly one backing file at URI; the index (entries.json) and the file
// are created and removed together.
type MediaEntry struct {
	ID       string    `json:"id"`
	URI      string    `json:"uri"`
	Type     MediaType `json:"type"`
	Note     string    `json:"note"`
	Location *Location `json:"location"`
	Date     string    `json:"date"` // ISO-8601
}
