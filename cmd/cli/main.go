// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"smart-mall/pkg/config"
)

const version = "smart-mall cli 0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(0)
	}
	os.Exit(run(os.Args[1], os.Args[2:], os.Stdin, os.Stdout, os.Stderr))
}

func run(cmd string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := newClient(apiBaseURL())
	switch cmd {
	case "version":
		fmt.Fprintln(stdout, version)
	case "health":
		if err := c.health(); err != nil {
			fmt.Fprintf(stderr, "健康检查失败: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, "ok")
	case "config":
		return runConfig(args, stdout, stderr)
	case "chat":
		return runChat(c, args, stdin, stdout, stderr)
	case "order":
		if len(args) < 1 {
			fmt.Fprintln(stderr, "Usage: mall order <order_no>")
			return 1
		}
		return printJSON(c, "/api/orders/"+args[0], stdout, stderr)
	case "products":
		return printJSON(c, "/api/products", stdout, stderr)
	case "tickets", "after-sales", "tools":
		if err := adminLogin(c); err != nil {
			fmt.Fprintf(stderr, "登录失败: %v\n", err)
			return 1
		}
		return printJSON(c, "/api/admin/"+cmd, stdout, stderr)
	default:
		printUsage(stderr)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mall <command> [args]")
	fmt.Fprintln(w, "  version            - 显示版本")
	fmt.Fprintln(w, "  health             - 健康检查")
	fmt.Fprintln(w, "  config [path]      - 显示配置概要")
	fmt.Fprintln(w, "  chat [flags]       - 交互式客服对话（-session -order -product -shop）")
	fmt.Fprintln(w, "  order <order_no>   - 查看订单")
	fmt.Fprintln(w, "  products           - 上架商品列表")
	fmt.Fprintln(w, "  tickets            - 工单列表（需 MALL_ADMIN_USER / MALL_ADMIN_PASSWORD）")
	fmt.Fprintln(w, "  after-sales        - 售后单列表")
	fmt.Fprintln(w, "  tools              - 工具声明")
	fmt.Fprintln(w, "环境变量 MALL_API_URL 指定服务地址，默认 "+defaultBaseURL)
}

func runConfig(args []string, stdout, stderr io.Writer) int {
	path := "configs/api.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	cfg, err := config.LoadAPIConfigWithModel(path)
	if err != nil {
		fmt.Fprintf(stderr, "加载配置失败: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "api.port=%d\n", cfg.API.Port)
	fmt.Fprintf(stdout, "api.host=%s\n", cfg.API.Host)
	fmt.Fprintf(stdout, "model.defaults.llm=%s\n", cfg.Model.Defaults.LLM)
	fmt.Fprintf(stdout, "agent.max_iterations=%d\n", cfg.Agent.MaxIterations)
	fmt.Fprintf(stdout, "storage.commerce.type=%s\n", cfg.Storage.Commerce.Type)
	fmt.Fprintf(stdout, "storage.session.type=%s\n", cfg.Storage.Session.Type)
	return 0
}

// runChat 逐行读取输入；首轮返回的 session_id 在后续轮次复用，输入 /reset 清空历史
func runChat(c *client, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sessionID := fs.String("session", "", "复用已有会话")
	orderNo := fs.String("order", "", "当前订单号")
	productID := fs.String("product", "", "当前浏览的商品")
	shopID := fs.String("shop", "", "当前店铺")
	verbose := fs.Bool("v", false, "打印工具调用步骤")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	reset := false
	scanner := bufio.NewScanner(stdin)
	fmt.Fprint(stdout, "> ")
	for scanner.Scan() {
		msg := strings.TrimSpace(scanner.Text())
		switch msg {
		case "":
			fmt.Fprint(stdout, "> ")
			continue
		case "exit", "quit":
			return 0
		case "/reset":
			reset = true
			fmt.Fprint(stdout, "(下一轮将清空会话历史)\n> ")
			continue
		}
		resp, err := c.chat(chatRequest{
			SessionID: *sessionID,
			Message:   msg,
			Reset:     reset,
			ProductID: *productID,
			ShopID:    *shopID,
			OrderNo:   *orderNo,
		})
		if err != nil {
			fmt.Fprintf(stderr, "发送失败: %v\n> ", err)
			continue
		}
		reset = false
		*sessionID = resp.SessionID
		if *verbose {
			for i, s := range resp.Steps {
				fmt.Fprintf(stdout, "  [%d] %s %s\n      => %s\n", i+1, s.Action, s.ActionInput, s.Observation)
			}
		}
		fmt.Fprintf(stdout, "%s\n> ", resp.Answer)
	}
	return 0
}

func adminLogin(c *client) error {
	user, password := os.Getenv("MALL_ADMIN_USER"), os.Getenv("MALL_ADMIN_PASSWORD")
	if user == "" || password == "" {
		return nil
	}
	return c.login(user, password)
}

func printJSON(c *client, path string, stdout, stderr io.Writer) int {
	var out json.RawMessage
	if err := c.getJSON(path, &out); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	var v any
	if err := json.Unmarshal(out, &v); err != nil {
		fmt.Fprintln(stdout, string(out))
		return 0
	}
	_ = enc.Encode(v)
	return 0
}
