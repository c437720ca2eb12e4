package domain

// Theme is an app theme from the theming catalog. It is independent of
// journal data and is never part of a backup.
type Theme struct {
	ID           int64
	Name         string
	Purchased    bool
	Type         string
	Preview      string
	PrimaryColor string
	SplashText   string
	Price        *float64
}
