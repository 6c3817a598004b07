// Package photos talks to the Synology Photos web API. The rest of the
// synchronizer only depends on the Client interface so tests can swap in a
// fake service.
package photos

// AlbumTypeCondition marks albums whose membership is defined by a filter
// condition rather than manual curation. Only condition albums are ever
// managed by the synchronizer; every other type is foreign and untouched.
const AlbumTypeCondition = "condition"

// Folder is one entry of the remote folder index. Name is the folder's
// virtual path inside the owner's personal space.
type Folder struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Parent      int    `json:"parent,omitempty"`
	OwnerUserID int    `json:"owner_user_id,omitempty"`
	Shared      bool   `json:"shared,omitempty"`
}

// Condition is the membership filter of a condition album. Albums created
// by the synchronizer always reference exactly one folder.
type Condition struct {
	UserID       int   `json:"user_id"`
	ItemType     []int `json:"item_type"`
	FolderFilter []int `json:"folder_filter"`
}

// Album is a remote album record.
type Album struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Condition Condition `json:"condition,omitempty"`
}

// SingleFolder returns the folder id backing this album if it is a
// condition album over exactly one folder.
func (a Album) SingleFolder() (int, bool) {
	if a.Type != AlbumTypeCondition || len(a.Condition.FolderFilter) != 1 {
		return 0, false
	}
	return a.Condition.FolderFilter[0], true
}
