package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	command "github.com/goliatone/go-command"

	"github.com/internetdrew/portfolio-v3/internal/commands"
	contactcmd "github.com/internetdrew/portfolio-v3/internal/commands/contact"
	"github.com/internetdrew/portfolio-v3/internal/contact"
	"github.com/internetdrew/portfolio-v3/internal/logging"
	"github.com/internetdrew/portfolio-v3/internal/metrics"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type contactResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type contactAPI struct {
	relay   command.Commander[contactcmd.SendContactCommand]
	metrics *metrics.Metrics
	logger  interfaces.Logger
}

// send relays one submission. Malformed and invalid bodies are rejected
// before the email API is contacted; upstream failures answer 200 with
// success false so the form can show its failure notice.
func (api *contactAPI) send(c *gin.Context) {
	logger := logging.WithRequestID(api.logger, requestID(c))
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var payload contactRequest
	if err := decodeJSON(c.Request, &payload); err != nil {
		logger.Warn("contact.relay.malformed", "error", err)
		api.observe(metrics.OutcomeMalformed)
		c.JSON(http.StatusBadRequest, contactResponse{Error: "invalid_json"})
		return
	}

	msg := contactcmd.SendContactCommand{
		RequestID: requestID(c),
		Name:      payload.Name,
		Email:     payload.Email,
		Message:   payload.Message,
	}
	if err := msg.Validate(); err != nil {
		api.rejectInvalid(c, logger, err)
		return
	}

	if err := api.relay.Execute(c.Request.Context(), msg); err != nil {
		if commands.IsValidationError(err) {
			api.rejectInvalid(c, logger, err)
			return
		}
		logger.Error("contact.relay.upstream_failed", "error", err)
		api.observe(metrics.OutcomeUpstreamErr)
		c.JSON(http.StatusOK, contactResponse{Success: false})
		return
	}

	api.observe(metrics.OutcomeSent)
	c.JSON(http.StatusOK, contactResponse{Success: true})
}

func (api *contactAPI) rejectInvalid(c *gin.Context, logger interfaces.Logger, err error) {
	fields := contact.FieldErrors(err)
	logger.Info("contact.relay.invalid", "fields", contact.InvalidFields(fields))
	api.observe(metrics.OutcomeInvalid)
	c.JSON(http.StatusUnprocessableEntity, contactResponse{
		Error:  "validation_failed",
		Fields: fields,
	})
}

func (api *contactAPI) observe(outcome string) {
	if api.metrics != nil {
		api.metrics.ObserveContact(outcome)
	}
}
