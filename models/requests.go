package models

// Request bodies accepted by the HTTP API. Binding tags are enforced by gin's
// validator before anything reaches the stores.

type PageViewRequest struct {
	PagePath  string `json:"pagePath" binding:"required,max=2048"`
	PageTitle string `json:"pageTitle" binding:"max=512"`
	UserAgent string `json:"userAgent" binding:"max=1024"`
	Referrer  string `json:"referrer" binding:"max=2048"`
	SessionID string `json:"sessionId" binding:"max=128"`
}

type BlogViewRequest struct {
	PostSlug         string `json:"postSlug" binding:"required,max=256"`
	PostID           string `json:"postId" binding:"max=64"`
	PostTitle        string `json:"postTitle" binding:"max=512"`
	UserAgent        string `json:"userAgent" binding:"max=1024"`
	Referrer         string `json:"referrer" binding:"max=2048"`
	SessionID        string `json:"sessionId" binding:"max=128"`
	TimeSpentSeconds int    `json:"timeSpentSeconds" binding:"gte=0"`
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required,max=10000"`
}

type BlogPostInput struct {
	Title         string        `json:"title" binding:"required,max=300"`
	Slug          string        `json:"slug" binding:"max=300"`
	Excerpt       string        `json:"excerpt" binding:"max=1000"`
	Content       string        `json:"content" binding:"required"`
	ContentFormat ContentFormat `json:"contentFormat" binding:"omitempty,oneof=html markdown"`
	Tags          []string      `json:"tags"`
	Featured      bool          `json:"featured"`
	Published     bool          `json:"published"`
	ReadTime      int           `json:"readTime" binding:"gte=0"`
}

type ProjectInput struct {
	Title       string   `json:"title" binding:"required,max=300"`
	Description string   `json:"description" binding:"required"`
	TechStack   []string `json:"techStack"`
	LiveLink    string   `json:"liveLink" binding:"omitempty,url"`
	GithubLink  string   `json:"githubLink" binding:"omitempty,url"`
	ImageURL    string   `json:"imageUrl" binding:"omitempty,url"`
	Tags        []string `json:"tags"`
}
