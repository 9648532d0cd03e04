package models

// Allowed values of the enumerated game fields.
var (
	OperatingSystems = []string{"Windows", "Linux", "Mac"}
	Languages        = []string{"Español", "Inglés"}
	PlayerModes      = []string{"Single-player", "Multi-player"}
)

// Category is a distinct category among published games.
type Category struct {
	Name  string `json:"name"`
	Games int64  `json:"games"`
}
