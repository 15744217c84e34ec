package gateway

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"
)

// Tool argument shapes offered to the model. The client answers the calls;
// the gateway only declares them.

type addRoomArgs struct {
	// RoomType is a snake_case room kind, e.g. bedroom, bathroom, kitchen,
	// living_room, dining_room, garage, balcony, garden, office, other.
	RoomType string `json:"room_type"`
	Name     string `json:"name,omitempty"`
}

type updateAmenityArgs struct {
	AmenityName string `json:"amenity_name"`
	// Status is "provided" or "not_provided".
	Status string `json:"status"`
}

type saveObservationArgs struct {
	Label   string `json:"label"`
	Details string `json:"details"`
}

// propertyTools declares the walkthrough tools for the upstream connect
// config.
func propertyTools() ([]*genai.Tool, error) {
	addRoom, err := declaration[addRoomArgs]("add_room",
		"Record that the walkthrough reached a new room of the property.")
	if err != nil {
		return nil, err
	}
	updateAmenity, err := declaration[updateAmenityArgs]("update_amenity",
		"Mark an amenity of the property as provided or not provided.")
	if err != nil {
		return nil, err
	}
	saveObservation, err := declaration[saveObservationArgs]("save_observation",
		"Store a labeled free-form observation about the property.")
	if err != nil {
		return nil, err
	}
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{addRoom, updateAmenity, saveObservation},
	}}, nil
}

func declaration[ArgType any](name, description string) (*genai.FunctionDeclaration, error) {
	schema, err := jsonschema.For[ArgType](&jsonschema.ForOptions{})
	if err != nil {
		return nil, fmt.Errorf("declare %s: %w", name, err)
	}
	return &genai.FunctionDeclaration{
		Name:        name,
		Description: description,
		Parameters:  convSchema(schema),
	}, nil
}

// convSchema maps a derived argument schema onto the genai form. The
// walkthrough tools declare flat objects of scalar fields; anything else is
// a programming error in the argument structs.
func convSchema(schema *jsonschema.Schema) *genai.Schema {
	if schema == nil {
		return nil
	}

	gs := genai.Schema{
		Description: schema.Description,
		Required:    schema.Required,
	}
	switch schema.Type {
	case "object":
		gs.Type = genai.TypeObject
		gs.Properties = make(map[string]*genai.Schema, len(schema.Properties))
		for k, prop := range schema.Properties {
			gs.Properties[k] = convSchema(prop)
		}
	case "string":
		gs.Type = genai.TypeString
	case "number":
		gs.Type = genai.TypeNumber
	case "integer":
		gs.Type = genai.TypeInteger
	case "boolean":
		gs.Type = genai.TypeBoolean
	default:
		panic(fmt.Sprintf("gateway: unsupported tool argument schema type %q", schema.Type))
	}
	return &gs
}

const defaultSystemPrompt = `You are a friendly real-estate onboarding guide on a live audio and video
call with a property owner walking through their home. Ask about each room
as the camera shows it, call add_room when a new room appears, call
update_amenity when the owner confirms or denies an amenity, and call
save_observation for notable details worth keeping. Keep your spoken answers
short and conversational.`

func systemPrompt(override, spaceID string) string {
	prompt := override
	if prompt == "" {
		prompt = defaultSystemPrompt
	}
	if spaceID != "" {
		prompt += fmt.Sprintf("\n\nThe property being documented has listing id %q.", spaceID)
	}
	return prompt
}
