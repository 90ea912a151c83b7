package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"swiftpass/internal/attendance"
	"swiftpass/internal/identity"
	"swiftpass/internal/qr"
	"swiftpass/internal/student"
)

// statusTable is the single error-kind to HTTP status mapping. Handlers
// never pick status codes for service errors on their own.
var statusTable = []struct {
	err    error
	status int
}{
	{student.ErrNotFound, http.StatusNotFound},
	{attendance.ErrNotFound, http.StatusNotFound},
	{attendance.ErrOpenSession, http.StatusConflict},
	{identity.ErrEmailTaken, http.StatusConflict},
	{identity.ErrBadCredentials, http.StatusBadRequest},
	{qr.ErrMalformedPayload, http.StatusBadRequest},
	{attendance.ErrBadDate, http.StatusBadRequest},
	{attendance.ErrNoStudent, http.StatusBadRequest},
}

func writeError(c *gin.Context, err error) {
	for _, entry := range statusTable {
		if errors.Is(err, entry.err) {
			c.JSON(entry.status, gin.H{"error": err.Error()})
			return
		}
	}
	// Store faults and anything unclassified: log the detail, return a
	// generic body.
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
}
