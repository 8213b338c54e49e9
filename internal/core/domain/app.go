package domain

import "time"

// AppStatus is the moderation state of a published app. The lifecycle is
// owned by the server; the client only triggers transitions.
type AppStatus string

const (
	AppPending   AppStatus = "pending"
	AppApproved  AppStatus = "approved"
	AppRejected  AppStatus = "rejected"
	AppSuspended AppStatus = "suspended"
)

// appTransitions is the client-side view of the moderation state machine.
// Rejected is terminal: no transition out of it is offered.
var appTransitions = map[AppStatus][]AppStatus{
	AppPending:   {AppApproved, AppRejected},
	AppApproved:  {AppSuspended},
	AppSuspended: {AppApproved},
	AppRejected:  {},
}

// Valid reports whether s is a status the server can return.
func (s AppStatus) Valid() bool {
	_, ok := appTransitions[s]
	return ok
}

// CanTransition reports whether moving from s to next is a transition the
// console offers. The server remains authoritative; this only keeps the
// console from issuing requests the moderation flow never allows.
func (s AppStatus) CanTransition(next AppStatus) bool {
	for _, t := range appTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// App is a published (or submitted) application record.
type App struct {
	ID               string    `json:"_id"`
	Name             string    `json:"name"`
	PackageID        string    `json:"packageId"`
	Description      string    `json:"description"`
	ShortDescription string    `json:"shortDescription"`
	Version          string    `json:"version"`
	Category         string    `json:"category"`
	Status           AppStatus `json:"status"`
	Featured         bool      `json:"featured"`
	Developer        User      `json:"developer"`
	Downloads        int64     `json:"downloads"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// AppDraft carries the metadata of an app being published or updated.
// The package file travels alongside it as a multipart part.
type AppDraft struct {
	Name             string
	PackageID        string
	Description      string
	ShortDescription string
	Version          string
	Category         string
}

// Stats is the admin dashboard aggregate, computed server-side.
type Stats struct {
	TotalUsers      int64 `json:"totalUsers"`
	TotalDevelopers int64 `json:"totalDevelopers"`
	TotalApps       int64 `json:"totalApps"`
	PendingApps     int64 `json:"pendingApps"`
	TotalDownloads  int64 `json:"totalDownloads"`
}

// Activity is one entry of the admin activity feed.
type Activity struct {
	ID          string    `json:"_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
