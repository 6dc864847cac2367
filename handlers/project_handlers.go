package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/api/models"
	"portfolio/api/store"
)

type ProjectStore interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) error
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id string) error
}

type ProjectHandlers struct {
	Projects ProjectStore
}

func NewProjectHandlers(projects ProjectStore) *ProjectHandlers {
	return &ProjectHandlers{Projects: projects}
}

func projectFromInput(in *models.ProjectInput) *models.Project {
	return &models.Project{
		Title:       in.Title,
		Description: in.Description,
		TechStack:   models.StringList(in.TechStack),
		LiveLink:    in.LiveLink,
		GithubLink:  in.GithubLink,
		ImageURL:    in.ImageURL,
		Tags:        models.StringList(in.Tags),
	}
}

func (h *ProjectHandlers) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	projects, err := h.Projects.ListProjects(ctx)
	if err != nil {
		slog.Error("error fetching projects", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandlers) Create(c *gin.Context) {
	var in models.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	p := projectFromInput(&in)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Projects.CreateProject(ctx, p); err != nil {
		slog.Error("error creating project", "title", p.Title, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandlers) Update(c *gin.Context) {
	var in models.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	p := projectFromInput(&in)
	p.ID = c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Projects.UpdateProject(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		slog.Error("error updating project", "id", p.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandlers) Delete(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Projects.DeleteProject(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		slog.Error("error deleting project", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}
	c.Status(http.StatusNoContent)
}
