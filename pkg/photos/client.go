package photos

// Client is the surface of the remote photo service the synchronizer
// consumes. Every call blocks; there are no automatic retries beyond what
// the implementation does during login.
type Client interface {
	// UserID is the id of the authenticated user, used as the owner of
	// album conditions.
	UserID() int

	// ListAlbums fetches all remote albums.
	ListAlbums() ([]Album, error)

	// CreateAlbum creates a condition album and returns the new record.
	CreateAlbum(name string, condition Condition) (Album, error)

	// DeleteAlbum removes an album. The backing folders and media are
	// never touched.
	DeleteAlbum(id int) error

	// ShareAlbum applies the sharing configuration to an album. Re-sending
	// an unchanged configuration is safe.
	ShareAlbum(id int, targets []string, permission string, roles []string) error

	// ListFolders fetches the complete personal-space folder index.
	ListFolders() ([]Folder, error)

	// ListTeamFolders lists the team-space folders below parentID.
	// Parent id 0 lists the team-space roots.
	ListTeamFolders(parentID int) ([]Folder, error)

	// TriggerReindex asks the service to reindex the personal space.
	// The reindex itself runs asynchronously.
	TriggerReindex() (bool, error)
}
