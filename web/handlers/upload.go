package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"timetracker.com/timetracker/service"
	"timetracker.com/timetracker/timesheet"
	"timetracker.com/timetracker/utils"
	web "timetracker.com/timetracker/web/common"
	"timetracker.com/timetracker/web/middlewares"
)

const maxImportSize = 5 << 20

// ImportUsersHandler creates users from an uploaded CSV sent as the "file"
// form field.
func ImportUsersHandler(svc *service.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middlewares.MustSession(c)
		if !ok {
			return
		}

		file, err := c.FormFile("file")
		if err != nil {
			web.AbortWithBindingError(c, err)
			return
		}
		if ext := strings.ToLower(filepath.Ext(file.Filename)); ext != ".csv" {
			web.AbortWithError(c, &timesheet.ValidationError{Field: "file", Message: "only .csv files can be imported"})
			return
		}
		if file.Size > maxImportSize {
			web.AbortWithError(c, &timesheet.ValidationError{Field: "file", Message: "file is too large"})
			return
		}

		f, err := file.Open()
		if err != nil {
			web.AbortWithError(c, err)
			return
		}
		defer f.Close()

		records, err := utils.ParseCSVRecords(f)
		if err != nil {
			web.AbortWithError(c, &timesheet.ValidationError{Field: "file", Message: err.Error()})
			return
		}

		res, err := svc.ImportUsers(c.Request.Context(), sess, records)
		if err != nil {
			web.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, web.NewSuccessResponse(res))
	}
}
