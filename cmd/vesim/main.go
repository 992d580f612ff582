// vesim 按 YAML 场景向 TCP 网关回放 VE.Direct 字节流，
// 用于联调与压测，不依赖真实硬件。
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/taoyao-code/vedirect-server/internal/vedirect"
)

// fieldSpec 场景文件中的单个字段，保持声明顺序
type fieldSpec struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// blockSpec 一个完整 Block 的字段集
type blockSpec struct {
	Fields []fieldSpec `yaml:"fields"`
}

// deviceSpec 一路模拟设备
type deviceSpec struct {
	Name     string        `yaml:"name"`
	Interval time.Duration `yaml:"interval"`
	// Cycles 回放轮数，0 表示无限循环
	Cycles int `yaml:"cycles"`
	// CorruptRate 按概率翻转帧内一个字节，用于校验错误路径，0-1
	CorruptRate float64     `yaml:"corruptRate"`
	Blocks      []blockSpec `yaml:"blocks"`
}

// scenario 场景文件根结构
type scenario struct {
	Devices []deviceSpec `yaml:"devices"`
}

func main() {
	addr := flag.String("addr", "127.0.0.1:7160", "网关TCP地址")
	file := flag.String("scenario", "", "场景YAML文件路径")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if *file == "" {
		logger.Fatal("missing -scenario flag")
	}

	sc, err := loadScenario(*file)
	if err != nil {
		logger.Fatal("load scenario failed", zap.Error(err))
	}
	if len(sc.Devices) == 0 {
		logger.Fatal("scenario has no devices")
	}

	var wg sync.WaitGroup
	for _, dev := range sc.Devices {
		wg.Add(1)
		go func(dev deviceSpec) {
			defer wg.Done()
			if err := replay(*addr, dev, logger); err != nil {
				logger.Error("replay failed",
					zap.String("device", dev.Name),
					zap.Error(err))
			}
		}(dev)
	}
	wg.Wait()
}

func loadScenario(path string) (*scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &sc, nil
}

// replay 连接网关并按间隔回放设备的 Block 序列
func replay(addr string, dev deviceSpec, logger *zap.Logger) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	interval := dev.Interval
	if interval <= 0 {
		interval = time.Second
	}

	frames := make([][]byte, 0, len(dev.Blocks))
	for _, b := range dev.Blocks {
		fields := make([]vedirect.Field, 0, len(b.Fields))
		for _, f := range b.Fields {
			fields = append(fields, vedirect.Field{Label: f.Label, Value: f.Value})
		}
		frames = append(frames, vedirect.BuildFrame(fields))
	}
	if len(frames) == 0 {
		return fmt.Errorf("device %s has no blocks", dev.Name)
	}

	logger.Info("replay started",
		zap.String("device", dev.Name),
		zap.String("addr", addr),
		zap.Int("blocks", len(frames)),
		zap.Duration("interval", interval))

	sent := 0
	for cycle := 0; dev.Cycles == 0 || cycle < dev.Cycles; cycle++ {
		for _, frame := range frames {
			out := frame
			if dev.CorruptRate > 0 && rand.Float64() < dev.CorruptRate {
				out = corrupt(frame)
				logger.Debug("frame corrupted", zap.String("device", dev.Name))
			}
			if _, err := conn.Write(out); err != nil {
				return fmt.Errorf("write: %w", err)
			}
			sent++
			time.Sleep(interval)
		}
	}

	logger.Info("replay finished",
		zap.String("device", dev.Name),
		zap.Int("frames_sent", sent))
	return nil
}

// corrupt 复制帧并翻转一个非行首字节
func corrupt(frame []byte) []byte {
	out := make([]byte, len(frame))
	copy(out, frame)
	if len(out) > 4 {
		out[2+rand.Intn(len(out)-4)] ^= 0x01
	}
	return out
}
