package tools

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/healthylinkx/chatbot/internal/directory"
	"github.com/healthylinkx/chatbot/internal/errs"
	"github.com/healthylinkx/chatbot/internal/llm"
	"github.com/healthylinkx/chatbot/pkg/log"
)

const (
	SearchDoctorsName = "SearchDoctors"

	// DefaultResultLimit bounds the records returned to the model.
	DefaultResultLimit = 10
	maxResultLimit     = 50

	errNotEnoughParams = "not enough params: provide a zipcode, lastname or specialty"
)

// SystemPrompt instructs tool-capable models how to use SearchDoctors.
const SystemPrompt = `You are an AI assistant with extended skills in healthcare.
When the user asks for a doctor you have access to a tool to search for doctors, but only use it when necessary.
If the tool is not required respond as normal.
Before calling SearchDoctors, check if the user looks for a specific gender, lastname, speciality or zipcode.
Do it in a conversational mode.
Before calling a tool, do some analysis within <thinking> </thinking> tags.
Go through each of the parameters and determine if the user has directly provided or given enough information to infer a value.
If all the parameters are present, close the thinking tag and proceed with the tool call.
BUT if one of the parameters is missing, DO NOT invoke the function and ask the user to provide the missing parameter.`

var fold = cases.Lower(language.Und)

// SearchDoctors looks up doctors in the HealthyLinkx directory.
type SearchDoctors struct {
	store directory.Store
	limit int
}

// NewSearchDoctors creates the tool. A non-positive limit selects
// DefaultResultLimit.
func NewSearchDoctors(store directory.Store, limit int) *SearchDoctors {
	switch {
	case limit <= 0:
		limit = DefaultResultLimit
	case limit > maxResultLimit:
		limit = maxResultLimit
	}
	return &SearchDoctors{store: store, limit: limit}
}

func (t *SearchDoctors) Name() string {
	return SearchDoctorsName
}

func (t *SearchDoctors) Description() string {
	return "Search for doctors in the HealthyLinkx directory"
}

func (t *SearchDoctors) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
		Properties: map[string]any{
			"zipcode": map[string]any{
				"type":        "string",
				"description": "The zipcode of the address of the doctor.",
			},
			"lastname": map[string]any{
				"type":        "string",
				"description": "The lastname of the doctor.",
			},
			"specialty": map[string]any{
				"type":        "string",
				"description": "The specialty of the doctor.",
			},
			"gender": map[string]any{
				"type":        "string",
				"description": "The gender of the doctor.",
			},
		},
	}
}

// NormalizeGender maps "male"/"m" (any case) to "M" and any other
// non-empty value to "F". Empty input stays empty.
func NormalizeGender(g string) string {
	g = strings.TrimSpace(g)
	if g == "" {
		return ""
	}
	switch fold.String(g) {
	case "male", "m":
		return "M"
	default:
		return "F"
	}
}

// BuildFilter turns tool arguments into directory predicates. ok is false
// when none of zipcode, lastname or specialty is present.
func BuildFilter(args map[string]string) (directory.Filter, bool) {
	var f directory.Filter
	for _, field := range []directory.Field{directory.FieldZipcode, directory.FieldLastname, directory.FieldSpecialty} {
		if v := strings.TrimSpace(args[string(field)]); v != "" {
			f.Eq(field, v)
		}
	}
	if f.Empty() {
		return f, false
	}
	if g := NormalizeGender(args[string(directory.FieldGender)]); g != "" {
		f.Eq(directory.FieldGender, g)
	}
	return f, true
}

func (t *SearchDoctors) Execute(ctx context.Context, args map[string]string) (Result, error) {
	log.Debug("Tool parameters: gender: %q, lastname: %q, specialty: %q, zipcode: %q",
		args["gender"], args["lastname"], args["specialty"], args["zipcode"])

	filter, ok := BuildFilter(args)
	if !ok {
		return Result{
			Status: StatusRejected,
			Error:  &ErrorDetail{Message: errNotEnoughParams},
		}, nil
	}

	query := filter.String()
	doctors, err := t.store.Query(ctx, filter, t.limit)
	if err != nil {
		if cerr := errs.FromContext(ctx); cerr != nil {
			return Result{}, cerr
		}
		log.Warn("Directory query failed for %s: %v", query, err)
		return Result{
			Status: StatusFailed,
			Error:  &ErrorDetail{Message: err.Error(), Query: query},
			Query:  query,
		}, nil
	}
	return Result{Status: StatusSuccess, Records: doctors, Query: query}, nil
}
