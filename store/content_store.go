package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"portfolio/api/models"
)

// ContentStore holds the blog, project and contact tables.
type ContentStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewContentStore creates a new ContentStore instance.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db, now: time.Now}
}

const postColumns = `id, title, slug, excerpt, content, content_format, tags, featured, published, read_time, created_at, updated_at`

func scanPost(row rowScanner) (*models.BlogPost, error) {
	post := &models.BlogPost{}
	var format string
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Excerpt,
		&post.Content,
		&format,
		&post.Tags,
		&post.Featured,
		&post.Published,
		&post.ReadTime,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	post.ContentFormat = models.ContentFormat(format)
	return post, nil
}

// ListPosts returns posts newest first. Drafts are left out when publishedOnly is set.
func (s *ContentStore) ListPosts(ctx context.Context, publishedOnly bool) ([]models.BlogPost, error) {
	query := `SELECT ` + postColumns + ` FROM blog_posts`
	if publishedOnly {
		query += ` WHERE published = TRUE`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.BlogPost{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, nil
}

func (s *ContentStore) GetPostBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.BlogPost, error) {
	query := `SELECT ` + postColumns + ` FROM blog_posts WHERE slug = $1`
	if publishedOnly {
		query += ` AND published = TRUE`
	}
	post, err := scanPost(s.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post by slug: %w", err)
	}
	return post, nil
}

func (s *ContentStore) GetPost(ctx context.Context, id string) (*models.BlogPost, error) {
	post, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// CreatePost inserts post, assigning its ID and timestamps. A taken slug
// yields ErrConflict.
func (s *ContentStore) CreatePost(ctx context.Context, post *models.BlogPost) error {
	now := s.now().UTC()
	post.ID = newID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Tags == nil {
		post.Tags = models.StringList{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blog_posts (`+postColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		post.ID, post.Title, post.Slug, post.Excerpt, post.Content, string(post.ContentFormat), post.Tags,
		post.Featured, post.Published, post.ReadTime, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("post with slug '%s': %w", post.Slug, ErrConflict)
		}
		return fmt.Errorf("failed to create post: %w", err)
	}

	slog.Info("post created", "id", post.ID, "slug", post.Slug)
	return nil
}

func (s *ContentStore) UpdatePost(ctx context.Context, post *models.BlogPost) error {
	post.UpdatedAt = s.now().UTC()
	if post.Tags == nil {
		post.Tags = models.StringList{}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE blog_posts
		SET title = $1, slug = $2, excerpt = $3, content = $4, content_format = $5, tags = $6,
			featured = $7, published = $8, read_time = $9, updated_at = $10
		WHERE id = $11`,
		post.Title, post.Slug, post.Excerpt, post.Content, string(post.ContentFormat), post.Tags,
		post.Featured, post.Published, post.ReadTime, post.UpdatedAt, post.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("post with slug '%s': %w", post.Slug, ErrConflict)
		}
		return fmt.Errorf("failed to update post: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}

	// Reload so CreatedAt is accurate in the response.
	stored, err := s.GetPost(ctx, post.ID)
	if err != nil {
		return err
	}
	*post = *stored
	return nil
}

func (s *ContentStore) DeletePost(ctx context.Context, id string) error {
	// Images are removed explicitly; SQLite only cascades with foreign_keys on.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blog_images WHERE post_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete post images: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return checkAffected(res)
}

// ListImages returns the images of a post in display order.
func (s *ContentStore) ListImages(ctx context.Context, postID string) ([]models.BlogImage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, post_id, image_url, alt_text, caption, order_index, created_at
		FROM blog_images
		WHERE post_id = $1
		ORDER BY order_index, created_at`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	images := []models.BlogImage{}
	for rows.Next() {
		var (
			img     models.BlogImage
			caption sql.NullString
		)
		if err := rows.Scan(&img.ID, &img.PostID, &img.ImageURL, &img.AltText, &caption, &img.OrderIndex, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		img.Caption = caption.String
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}
	return images, nil
}

// AddImage appends img to the end of its post's gallery.
func (s *ContentStore) AddImage(ctx context.Context, img *models.BlogImage) error {
	var next int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(order_index) + 1, 0) FROM blog_images WHERE post_id = $1`, img.PostID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to read image order: %w", err)
	}

	img.ID = newID()
	img.OrderIndex = int(next)
	img.CreatedAt = s.now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO blog_images (id, post_id, image_url, alt_text, caption, order_index, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		img.ID, img.PostID, img.ImageURL, img.AltText, nullString(img.Caption), img.OrderIndex, img.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add image: %w", err)
	}
	return nil
}

const projectColumns = `id, title, description, tech_stack, live_link, github_link, image_url, tags, created_at`

func scanProject(row rowScanner) (*models.Project, error) {
	var (
		p                            models.Project
		liveLink, githubLink, imgURL sql.NullString
	)
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.TechStack, &liveLink, &githubLink, &imgURL, &p.Tags, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.LiveLink = liveLink.String
	p.GithubLink = githubLink.String
	p.ImageURL = imgURL.String
	return &p, nil
}

func (s *ContentStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}
	return projects, nil
}

func (s *ContentStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (s *ContentStore) CreateProject(ctx context.Context, p *models.Project) error {
	p.ID = newID()
	p.CreatedAt = s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Title, p.Description, p.TechStack, nullString(p.LiveLink), nullString(p.GithubLink),
		nullString(p.ImageURL), p.Tags, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (s *ContentStore) UpdateProject(ctx context.Context, p *models.Project) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET title = $1, description = $2, tech_stack = $3, live_link = $4, github_link = $5, image_url = $6, tags = $7
		WHERE id = $8`,
		p.Title, p.Description, p.TechStack, nullString(p.LiveLink), nullString(p.GithubLink),
		nullString(p.ImageURL), p.Tags, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}

	stored, err := s.GetProject(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

func (s *ContentStore) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return checkAffected(res)
}

func (s *ContentStore) CreateContact(ctx context.Context, contact *models.Contact) error {
	contact.ID = newID()
	contact.CreatedAt = s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (id, name, email, message, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		contact.ID, contact.Name, contact.Email, contact.Message, contact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	slog.Info("contact message stored", "id", contact.ID)
	return nil
}

func (s *ContentStore) ListContacts(ctx context.Context) ([]models.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, message, created_at
		FROM contacts
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Message, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}
	return contacts, nil
}

func (s *ContentStore) DeleteContact(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return checkAffected(res)
}
