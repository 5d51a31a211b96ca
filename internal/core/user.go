package core

// User is a registered judge participant. id 0 is the predefined root user,
// assigned outside the monotone counter; every other id comes from
// State.nextUserID.
type User struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

// PostUser is the POST /users request body. A present ID selects the
// update (rename) path; its absence selects the create path.
type PostUser struct {
	ID   *uint32 `json:"id"`
	Name string  `json:"name" binding:"required"`
}
