package handler

import (
	"github.com/gofiber/fiber/v2"

	"archivesys/internal/i18n"
	"archivesys/internal/model"
)

// Choice is one selectable value with its display label.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Choices groups the enumerations clients render as select inputs.
type Choices struct {
	DocumentTypes []Choice `json:"document_types"`
	ReportTypes   []Choice `json:"report_types"`
	ReportFormats []Choice `json:"report_formats"`
	Actions       []Choice `json:"actions"`
}

// ListChoices returns every enumeration labelled in the negotiated language.
//
// @Summary Enumerations with labels
// @Tags choices
// @Produce json
// @Param Accept-Language header string false "preferred language"
// @Success 200 {object} Choices
// @Security BearerAuth
// @Router /choices [get]
func ListChoices(labels *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := i18n.LangFromContext(c.UserContext(), labels.Fallback())

		out := Choices{}
		for _, t := range model.DocumentTypes {
			out.DocumentTypes = append(out.DocumentTypes, Choice{string(t), labels.DocumentType(lang, t)})
		}
		for _, t := range model.ReportTypes {
			out.ReportTypes = append(out.ReportTypes, Choice{string(t), labels.ReportType(lang, t)})
		}
		for _, f := range model.ReportFormats {
			out.ReportFormats = append(out.ReportFormats, Choice{string(f), labels.Format(lang, f)})
		}
		for _, a := range model.HistoryActions {
			out.Actions = append(out.Actions, Choice{string(a), labels.Action(lang, a)})
		}
		return c.JSON(out)
	}
}
