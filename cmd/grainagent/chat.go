package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/spf13/cobra"
	"github.com/tbxark/grainagent/agent"
	"github.com/tbxark/grainagent/types"
)

var (
	chatSession string
	chatDebug   bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run the grain survey in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := agent.WithStateKey(cmd.Context(), chatSession)
		cm, err := newChatModel(ctx, cfg.LLM)
		if err != nil {
			return err
		}
		flow, err := agent.NewModelChatFlow(cm, cfg.LLM.Lang, model.WithTemperature(cfg.LLM.Temperature))
		if err != nil {
			return err
		}
		cc := newCaches(cfg.Cache)
		defer func() { _ = cc.close() }()

		grainAgent := agent.NewAgent(
			"GrainSommelier",
			"An agent that surveys grain preferences and recommends a blend",
			flow,
			agent.NewCacheStateReadWriter(cc.sessions),
		)
		runner := adk.NewRunner(ctx, adk.RunnerConfig{Agent: grainAgent})

		out := cmd.OutOrStdout()
		reader := bufio.NewReader(cmd.InOrStdin())
		fmt.Fprintln(out, "안녕하세요! 건강 고민과 좋아하는 밥 식감을 알려주세요. (종료: exit)")
		for {
			fmt.Fprint(out, "사용자: ")
			input, rErr := reader.ReadString('\n')
			if rErr != nil {
				return nil
			}
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			if input == "exit" || input == "quit" {
				return nil
			}
			iter := runner.Run(ctx, []*schema.Message{schema.UserMessage(input)})
			for {
				event, ok := iter.Next()
				if !ok {
					break
				}
				if event.Err != nil {
					return event.Err
				}
				msg, mErr := event.Output.MessageOutput.GetMessage()
				if mErr != nil {
					return mErr
				}
				fmt.Fprintf(out, "\n소믈리에: %s\n======\n", msg.Content)
				if resp, ok := event.Output.CustomizedOutput.(*types.ChatResponse); ok && chatDebug {
					logs, _ := sonic.MarshalIndent(resp.DebugLogs, "", "  ")
					fmt.Fprintln(out, string(logs))
				}
			}
		}
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "terminal", "session key for survey state")
	chatCmd.Flags().BoolVar(&chatDebug, "debug", false, "print the debug log of every turn")
}
