package directory

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/service"
	"timetracker.com/timetracker/session"
	web "timetracker.com/timetracker/web/common"
	"timetracker.com/timetracker/web/middlewares"
)

type Endpoint struct {
	svc *service.DirectoryService
}

func Register(r *gin.RouterGroup, svc *service.DirectoryService) {
	endpoint := &Endpoint{svc: svc}

	r.GET("/users", endpoint.ListUsers)
	r.POST("/users", endpoint.CreateUser)
	r.PUT("/users/:id", endpoint.UpdateUser)
	r.DELETE("/users/:id", endpoint.DeleteUser)
	r.GET("/users/:id/projects", endpoint.UserProjects)
	r.PUT("/users/:id/projects", endpoint.SetUserProjects)

	r.GET("/clients", endpoint.ListClients)
	r.POST("/clients", endpoint.CreateClient)
	r.PUT("/clients/:id", endpoint.UpdateClient)
	r.DELETE("/clients/:id", endpoint.DeleteClient)

	r.GET("/projects", endpoint.ListProjects)
	r.POST("/projects", endpoint.CreateProject)
	r.PUT("/projects/:id", endpoint.UpdateProject)
	r.GET("/projects/:id/users", endpoint.ProjectUsers)
	r.PUT("/projects/:id/users", endpoint.SetProjectUsers)
	r.POST("/projects/:id/complete", endpoint.transition(svc.Complete))
	r.POST("/projects/:id/archive", endpoint.transition(svc.Archive))
	r.POST("/projects/:id/reactivate", endpoint.transition(svc.Reactivate))
}

type ProjectIDsDTO struct {
	ProjectIDs []string `json:"projectIds"`
}

type UserIDsDTO struct {
	UserIDs []string `json:"userIds"`
}

// respond writes data, or the error when there is one.
func respond(c *gin.Context, status int, data interface{}, err error) {
	if err != nil {
		web.AbortWithError(c, err)
		return
	}
	c.JSON(status, web.NewSuccessResponse(data))
}

func (ep *Endpoint) ListUsers(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	users, err := ep.svc.ListUsers(c.Request.Context(), sess)
	respond(c, http.StatusOK, users, err)
}

func (ep *Endpoint) CreateUser(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	var body service.UserInput
	if err := c.ShouldBindJSON(&body); err != nil {
		web.AbortWithBindingError(c, err)
		return
	}
	u, err := ep.svc.CreateUser(c.Request.Context(), sess, body)
	respond(c, http.StatusCreated, u, err)
}

func (ep *Endpoint) UpdateUser(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	var body service.UserInput
	if err := c.ShouldBindJSON(&body); err != nil {
		web.AbortWithBindingError(c, err)
		return
	}
	u, err := ep.svc.UpdateUser(c.Request.Context(), sess, c.Param("id"), body)
	respond(c, http.StatusOK, u, err)
}

func (ep *Endpoint) DeleteUser(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	err := ep.svc.DeleteUser(c.Request.Context(), sess, c.Param("id"))
	respond(c, http.StatusOK, gin.H{}, err)
}

func (ep *Endpoint) UserProjects(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	ids, err := ep.svc.UserProjects(c.Request.Context(), sess, c.Param("id"))
	respond(c, http.StatusOK, ProjectIDsDTO{ProjectIDs: ids}, err)
}

func (ep *Endpoint) SetUserProjects(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	var body ProjectIDsDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		web.AbortWithBindingError(c, err)
		return
	}
	err := ep.svc.SetUserProjects(c.Request.Context(), sess, c.Param("id"), body.ProjectIDs)
	respond(c, http.StatusOK, body, err)
}

func (ep *Endpoint) ListClients(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	clients, err := ep.svc.ListClients(c.Request.Context(), sess)
	respond(c, http.StatusOK, clients, err)
}

func (ep *Endpoint) CreateClient(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	var body service.ClientInput
	if err := c.ShouldBindJSON(&body); err != nil {
		web.AbortWithBindingError(c, err)
		return
	}
	client, err := ep.svc.CreateClient(c.Request.Context(), sess, body)
	respond(c, http.StatusCreated, client, err)
}

func (ep *Endpoint) UpdateClient(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	var body service.ClientInput
	if err := c.ShouldBindJSON(&body); err != nil {
		web.AbortWithBindingError(c, err)
		return
	}
	client, err := ep.svc.UpdateClient(c.Request.Context(), sess, c.Param("id"), body)
	respond(c, http.StatusOK, client, err)
}

func (ep *Endpoint) DeleteClient(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	err := ep.svc.DeleteClient(c.Request.Context(), sess, c.Param("id"))
	respond(c, http.StatusOK, gin.H{}, err)
}

func (ep *Endpoint) ListProjects(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	projects, err := ep.svc.ListProjects(c.Request.Context(), sess)
	respond(c, http.StatusOK, projects, err)
}

func (ep *Endpoint) CreateProject(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	var body service.ProjectInput
	if err := c.ShouldBindJSON(&body); err != nil {
		web.AbortWithBindingError(c, err)
		return
	}
	p, err := ep.svc.CreateProject(c.Request.Context(), sess, body)
	respond(c, http.StatusCreated, p, err)
}

func (ep *Endpoint) UpdateProject(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	var body service.ProjectInput
	if err := c.ShouldBindJSON(&body); err != nil {
		web.AbortWithBindingError(c, err)
		return
	}
	p, err := ep.svc.UpdateProject(c.Request.Context(), sess, c.Param("id"), body)
	respond(c, http.StatusOK, p, err)
}

func (ep *Endpoint) ProjectUsers(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	ids, err := ep.svc.ProjectUsers(c.Request.Context(), sess, c.Param("id"))
	respond(c, http.StatusOK, UserIDsDTO{UserIDs: ids}, err)
}

func (ep *Endpoint) SetProjectUsers(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	var body UserIDsDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		web.AbortWithBindingError(c, err)
		return
	}
	err := ep.svc.SetProjectUsers(c.Request.Context(), sess, c.Param("id"), body.UserIDs)
	respond(c, http.StatusOK, body, err)
}

type stateChange func(ctx context.Context, sess *session.Session, id string) (*model.Project, error)

func (ep *Endpoint) transition(change stateChange) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middlewares.MustSession(c)
		if !ok {
			return
		}
		p, err := change(c.Request.Context(), sess, c.Param("id"))
		respond(c, http.StatusOK, p, err)
	}
}
