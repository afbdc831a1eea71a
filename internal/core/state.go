package core

// PostState replaces the (original, complete) flag pair of a post.
type PostState string

const (
	// PostStateCreated is the creator's own post, made together with the challenge.
	PostStateCreated PostState = "created"
	// PostStateAccepted is a friend's post that has not been done yet.
	PostStateAccepted PostState = "accepted"
	// PostStateCompleted is a friend's post that has been done and reviewed.
	PostStateCompleted PostState = "completed"
)

var PostStates = []PostState{PostStateCreated, PostStateAccepted, PostStateCompleted}

func (s PostState) Valid() bool {
	switch s {
	case PostStateCreated, PostStateAccepted, PostStateCompleted:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether a post in s may move to next. Completing an
// already completed post is allowed and only refreshes the review.
func (s PostState) CanTransitionTo(next PostState) bool {
	switch s {
	case PostStateAccepted, PostStateCompleted:
		return next == PostStateCompleted
	default:
		return false
	}
}

func (s PostState) String() string {
	return string(s)
}
