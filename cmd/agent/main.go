package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/speechlab/dubkit/internal/config"
	"github.com/speechlab/dubkit/internal/domain"
	"github.com/speechlab/dubkit/internal/infra"
	"github.com/speechlab/dubkit/internal/tools"
)

const maxToolRounds = 10

// Function-calling agent that drives the dubbing tool registry with an
// OpenAI model. Usage:
//
//	agent "dub ./video.mp4 from en to es and wait for the result"
func main() {
	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}

	prompt := strings.TrimSpace(strings.Join(os.Args[1:], " "))
	if prompt == "" {
		prompt = "List my dubbing projects."
	}

	speechlab := infra.NewSpeechlabClient(cfg.BaseURL, cfg.APIKey, cfg.HTTPTimeout)
	dubService := domain.NewDubService(speechlab, nil, nil, cfg.BasePath)
	registry := tools.NewRegistry(dubService)

	var defs []openai.Tool
	for _, t := range registry.List() {
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Schema(),
			},
		})
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleSystem,
			Content: "You operate the Speechlab dubbing tools. " +
				"Call them to create projects, upload media, start dubbing, " +
				"poll status and download results. Report the outcome briefly.",
		},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}

	client := openai.NewClient(openaiKey)
	ctx := context.Background()

	for round := 0; round < maxToolRounds; round++ {
		resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    openai.GPT4oMini,
			Messages: messages,
			Tools:    defs,
		})
		if err != nil {
			log.Fatalf("completion: %v", err)
		}
		if len(resp.Choices) == 0 {
			log.Fatal("empty completion")
		}

		msg := resp.Choices[0].Message
		messages = append(messages, msg)

		if len(msg.ToolCalls) == 0 {
			fmt.Println(msg.Content)
			return
		}

		for _, call := range msg.ToolCalls {
			log.Printf("[agent] tool call: %s %s", call.Function.Name, call.Function.Arguments)

			result, err := registry.Invoke(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))

			var payload []byte
			if err != nil {
				payload, _ = json.Marshal(map[string]string{"error": err.Error()})
			} else {
				payload, _ = json.Marshal(result)
			}

			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    string(payload),
				ToolCallID: call.ID,
			})
		}
	}

	log.Fatal("agent gave up: too many tool rounds")
}
