package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/balaji-balu/lizzy-client/internal/api/store"
	"github.com/balaji-balu/lizzy-client/pkg/model"
	"github.com/balaji-balu/lizzy-client/pkg/senza"
)

func problem(c *gin.Context, code int, detail string) {
	c.JSON(code, model.ErrorBody{Detail: detail, Status: code, Title: http.StatusText(code)})
}

func CreateStack(c *gin.Context, st *store.Store) {
	var req model.DeploymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		problem(c, http.StatusBadRequest, err.Error())
		return
	}
	def, err := senza.Parse([]byte(req.SenzaYAML))
	if err != nil {
		problem(c, http.StatusBadRequest, err.Error())
		return
	}
	name, err := def.StackName()
	if err != nil {
		problem(c, http.StatusBadRequest, err.Error())
		return
	}

	stack := model.Stack{StackName: name, Version: req.StackVersion, Status: model.StatusCreateInProgress}
	if !req.DryRun {
		stack = st.Put(stack, req.Region)
	}
	c.JSON(http.StatusCreated, stack)
}

func ListStacks(c *gin.Context, st *store.Store) {
	var refs []string
	if raw := c.Query("references"); raw != "" {
		refs = strings.Split(raw, ",")
	}
	stacks := st.List(refs, c.Query("region"))
	if stacks == nil {
		stacks = []model.Stack{}
	}
	c.JSON(http.StatusOK, stacks)
}

func GetStack(c *gin.Context, st *store.Store) {
	stack, ok := st.Get(c.Param("id"))
	if !ok {
		problem(c, http.StatusNotFound, "Stack not found")
		return
	}
	if stack.Status == "" {
		// The agent omits the field when it cannot tell.
		c.JSON(http.StatusOK, gin.H{"stack_name": stack.StackName, "version": stack.Version})
		return
	}
	c.JSON(http.StatusOK, stack)
}

func UpdateStack(c *gin.Context, st *store.Store) {
	var req model.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		problem(c, http.StatusBadRequest, err.Error())
		return
	}
	id := c.Param("id")
	if req.NewTraffic != nil && !st.SetTraffic(id, float64(*req.NewTraffic)) {
		problem(c, http.StatusNotFound, "Stack not found")
		return
	}
	stack, ok := st.Get(id)
	if !ok {
		problem(c, http.StatusNotFound, "Stack not found")
		return
	}
	c.JSON(http.StatusOK, stack)
}

func DeleteStack(c *gin.Context, st *store.Store) {
	var req model.DeleteRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			problem(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	id := c.Param("id")
	if _, ok := st.Get(id); !ok {
		problem(c, http.StatusNotFound, "Stack not found")
		return
	}
	if !req.DryRun {
		st.Delete(id)
	}
	c.Status(http.StatusNoContent)
}

func GetTraffic(c *gin.Context, st *store.Store) {
	weight, ok := st.Traffic(c.Param("id"))
	if !ok {
		problem(c, http.StatusNotFound, "Stack not found")
		return
	}
	c.JSON(http.StatusOK, model.Traffic{Weight: weight})
}
