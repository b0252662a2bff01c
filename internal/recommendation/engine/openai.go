package engine

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"clinrec/internal/recommendation"
)

const generatorInstructions = "You are a medical assistant that suggests clinical recommendations based on patient data. " +
	"You are not a real doctor, as such do not propose very exaggerated, expensive or invasive procedures. " +
	"Do not repeat back the instructions or patient data."

// OpenAIGenerator produces recommendation text through the OpenAI chat API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator builds a generator for the given API key and model.
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Generate asks the model for a recommendation. The caller bounds ctx; any
// error or empty choice is reported and absorbed by the engine.
func (g *OpenAIGenerator) Generate(ctx context.Context, patient recommendation.PatientData, bmi float64) (string, error) {
	surgery := "No"
	if patient.RecentSurgery {
		surgery = "Yes"
	}
	description := patient.Description
	if description == "" {
		description = "None"
	}

	prompt := fmt.Sprintf("Follow these rules:\n"+
		"1. If patient is over 65 years old and has chronic pain, recommend Physical Therapy\n"+
		"2. If patient has a BMI over 30, recommend Weight Management Program\n"+
		"3. If patient has had recent surgery, recommend Post-Op Rehabilitation Plan\n"+
		"Generate a medical recommendation based on the following patient data:\n\n"+
		"Name: %s\nAge: %d\nHeight: %d cm\nWeight: %d kg\nBMI: %.2f\nRecent Surgery: %s\nDescription: %s\n\n"+
		"Recommendation:",
		patient.Name, patient.Age, patient.HeightCm, patient.WeightKg, bmi, surgery, description)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: generatorInstructions},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
