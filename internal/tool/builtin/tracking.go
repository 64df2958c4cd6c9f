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

package builtin

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"smart-mall/internal/tool"
)

// TraceNode 物流节点
type TraceNode struct {
	Time     string `json:"time"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

// Tracking 物流轨迹
type Tracking struct {
	Carrier    string      `json:"carrier"`
	TrackingNo string      `json:"tracking_no"`
	Status     string      `json:"status"`
	Traces     []TraceNode `json:"traces"`
}

// TrackingResult get_tracking 的结果
type TrackingResult struct {
	OK       bool      `json:"ok"`
	Message  string    `json:"message"`
	Tracking *Tracking `json:"tracking"`
}

func (r *TrackingResult) Succeeded() bool { return r.OK }

var carriers = map[string]string{
	"SF":   "顺丰",
	"YT":   "圆通",
	"YTO":  "圆通",
	"ZTO":  "中通",
	"STO":  "申通",
	"JD":   "京东物流",
	"EMS":  "EMS",
	"ZT":   "中通/自定义",
	"HTKY": "百世",
}

var (
	trackingCities   = []string{"广州", "深圳", "上海", "北京", "杭州", "成都", "武汉", "南京", "西安", "重庆", "苏州", "长沙"}
	trackingHubs     = []string{"转运中心", "分拣中心", "集散中心", "仓库", "营业部"}
	trackingCouriers = []string{"快递员", "快递员小王", "快递员阿强", "快递员小陈", "快递员小刘"}
	trackingSigners  = []string{"本人", "家人", "前台", "门卫"}
)

// GetTrackingTool 实现 get_tracking；轨迹为模拟数据，随机源由运单号决定
type GetTrackingTool struct {
	deps Deps
}

// NewGetTrackingTool 创建 get_tracking 工具
func NewGetTrackingTool(deps Deps) *GetTrackingTool { return &GetTrackingTool{deps: deps} }

func (t *GetTrackingTool) Name() tool.Name { return tool.GetTracking }

func (t *GetTrackingTool) Description() string {
	return "查询物流轨迹。输入JSON键：tracking_no（必填，运单号）。返回物流节点列表（模拟）。"
}

func (t *GetTrackingTool) Schema() tool.Schema {
	return tool.Schema{
		Type:       "object",
		Properties: map[string]tool.SchemaProperty{"tracking_no": {Type: "string", Description: "运单号"}},
		Required:   []string{"tracking_no"},
	}
}

func (t *GetTrackingTool) Execute(_ context.Context, args tool.Args) (tool.Result, error) {
	no := args.String("tracking_no")
	if no == "" {
		return &TrackingResult{OK: false, Message: "运单号为空"}, nil
	}
	return &TrackingResult{
		OK:       true,
		Message:  "查询成功（模拟轨迹）",
		Tracking: simulateTracking(no, t.deps.now(), t.deps.policy().TrackingSignedRatio),
	}, nil
}

// carrierOf 取运单号前 4 个字符中的字母（大写）匹配快递公司
func carrierOf(no string) string {
	var b strings.Builder
	for i, r := range []rune(no) {
		if i >= 4 {
			break
		}
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	if c, ok := carriers[b.String()]; ok {
		return c
	}
	return "快递公司"
}

// simulateTracking 同一运单号得到相同的节点序列，时间以 now 为基准
func simulateTracking(no string, now time.Time, signedRatio float64) *Tracking {
	var seed int64
	for _, r := range no {
		seed += int64(r)
	}
	rnd := rand.New(rand.NewSource(seed))
	pick := func(list []string) string { return list[rnd.Intn(len(list))] }

	at := now.Add(-time.Duration(12+rnd.Intn(109)) * time.Hour)
	n := 5 + rnd.Intn(3)
	status := "运输中"
	traces := make([]TraceNode, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			at = at.Add(time.Duration(3+rnd.Intn(8)) * time.Hour)
		}
		city := pick(trackingCities)
		var desc string
		switch {
		case i == 0:
			desc = "已揽收"
		case i == n-1:
			if rnd.Float64() < signedRatio {
				desc = fmt.Sprintf("已签收（签收人：%s）", pick(trackingSigners))
				status = "已签收"
			} else {
				desc = fmt.Sprintf("派送中（快递员：%s）", pick(trackingCouriers))
				status = "派送中"
			}
		case i == n-2:
			desc = fmt.Sprintf("派送中（快递员：%s）", pick(trackingCouriers))
		default:
			switch rnd.Intn(3) {
			case 0:
				desc = fmt.Sprintf("到达%s%s", city, pick(trackingHubs))
			case 1:
				desc = fmt.Sprintf("离开%s%s", city, pick(trackingHubs))
			default:
				desc = "运输中（干线运输）"
			}
		}
		traces = append(traces, TraceNode{Time: at.Format("2006-01-02 15:04"), Location: city, Status: desc})
	}
	return &Tracking{Carrier: carrierOf(no), TrackingNo: no, Status: status, Traces: traces}
}
