package handlers

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Post    *PostHandler
	Comment *CommentHandler
	User    *UserHandler
}

type PostRepo interface {
	PostStore
	UserPosts
}

type Deps struct {
	Users    UserStore
	Posts    PostRepo
	Votes    VoteStore
	Comments CommentService
	Cache    CommentInvalidator
	Tokens   TokenIssuer
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(d Deps) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(d.Users, d.Tokens),
		Post:    NewPostHandler(d.Posts, d.Votes, d.Cache),
		Comment: NewCommentHandler(d.Comments),
		User:    NewUserHandler(d.Users, d.Posts),
	}
}
