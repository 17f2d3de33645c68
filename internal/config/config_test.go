package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var testButtons = []string{"A", "B", "X", "RT", "LT"}

// TestLoad 使用表驱动测试覆盖配置加载的核心场景
func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		createFile bool
		content    string
		wantErr    bool
		validate   func(t *testing.T, cfg *Config, err error)
	}{
		{
			name:       "正常加载有效YAML",
			createFile: true,
			content: `overlay:
  screen_width: 2560
  screen_height: 1440
  show_crosshair: false
button_mapping:
  A: LeftClick
  X: Q
ability_mapping:
  Q: X
aimable_buttons: [X]
action_distances:
  X: mid
controller:
  controller_deadzone: 0.15
  walk_circle_radius_px: 180
  mid_circle_radius_px: 400
  controller_type: playstation
logging:
  level: debug
`,
			wantErr: false,
			validate: func(t *testing.T, cfg *Config, err error) {
				if cfg.Overlay.ScreenWidth != 2560 || cfg.Overlay.ScreenHeight != 1440 {
					t.Errorf("Overlay 尺寸 = %vx%v, 期望 2560x1440", cfg.Overlay.ScreenWidth, cfg.Overlay.ScreenHeight)
				}
				if cfg.Overlay.ShowCrosshair {
					t.Errorf("ShowCrosshair 应被文件覆盖为 false")
				}
				if cfg.ButtonMapping["X"] != "Q" {
					t.Errorf("ButtonMapping[X] = %q, 期望 %q", cfg.ButtonMapping["X"], "Q")
				}
				if cfg.AbilityMapping["Q"] != "X" {
					t.Errorf("AbilityMapping[Q] = %q, 期望 %q", cfg.AbilityMapping["Q"], "X")
				}
				if len(cfg.AimableButtons) != 1 || cfg.AimableButtons[0] != "X" {
					t.Errorf("AimableButtons = %v, 期望 [X]", cfg.AimableButtons)
				}
				if cfg.ActionDistances["X"] != "mid" {
					t.Errorf("ActionDistances[X] = %q, 期望 mid", cfg.ActionDistances["X"])
				}
				if cfg.Controller.WalkCircleRadiusPx != 180 {
					t.Errorf("WalkCircleRadiusPx = %v, 期望 180", cfg.Controller.WalkCircleRadiusPx)
				}
				if cfg.Controller.ControllerType != "playstation" {
					t.Errorf("ControllerType = %q, 期望 playstation", cfg.Controller.ControllerType)
				}
				if cfg.Logging.Level != "debug" {
					t.Errorf("Logging.Level = %q, 期望 debug", cfg.Logging.Level)
				}
				// 未出现在文件中的字段保留默认值
				if cfg.Controller.FarCircleRadiusPx != 450 {
					t.Errorf("FarCircleRadiusPx = %v, 期望默认值 450", cfg.Controller.FarCircleRadiusPx)
				}
				if cfg.Controller.DrainOrder != "lifo" {
					t.Errorf("DrainOrder = %q, 期望默认值 lifo", cfg.Controller.DrainOrder)
				}
			},
		},
		{
			name:       "文件不存在",
			createFile: false,
			wantErr:    true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if !os.IsNotExist(err) {
					t.Errorf("期望文件不存在错误，实际: %v", err)
				}
			},
		},
		{
			name:       "YAML格式错误",
			createFile: true,
			content: `overlay:
  screen_width: [1920
`,
			wantErr: true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if err == nil || !strings.Contains(err.Error(), "yaml") {
					t.Errorf("期望返回YAML解析错误，实际: %v", err)
				}
			},
		},
		{
			name:       "空文件",
			createFile: true,
			content:    "",
			wantErr:    false,
			validate: func(t *testing.T, cfg *Config, err error) {
				// 空文件得到默认配置
				if cfg.Overlay.ScreenWidth != 1920 || cfg.Controller.PrimaryClick != "LeftClick" {
					t.Errorf("空文件应返回默认配置，实际 %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configPath := filepath.Join(tempDir, "config.yaml")

			if tt.createFile {
				if err := os.WriteFile(configPath, []byte(tt.content), 0o644); err != nil {
					t.Fatalf("创建测试配置文件失败: %v", err)
				}
			}

			cfg, err := Load(configPath)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err == nil && cfg == nil {
				t.Fatalf("Load() 返回了 nil 配置")
			}

			if tt.validate != nil {
				tt.validate(t, cfg, err)
			}
		})
	}
}

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.ButtonMapping = map[string]string{"A": "LeftClick", "X": "Q", "RT": "W"}
	cfg.AbilityMapping = map[string]string{"Q": "X", "W": "RT"}
	cfg.AimableButtons = []string{"X"}
	cfg.ActionDistances = map[string]string{"X": "mid", "RT": "far"}
	return cfg
}

// TestValidate 测试配置完整性校验
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr error
	}{
		{"有效配置", func(cfg *Config) {}, nil},
		{"屏幕尺寸为零", func(cfg *Config) { cfg.Overlay.ScreenWidth = 0 }, ErrInvalidGeometry},
		{"半径为负", func(cfg *Config) { cfg.Controller.MidCircleRadiusPx = -1 }, ErrInvalidGeometry},
		{"死区越界", func(cfg *Config) { cfg.Controller.Deadzone = 1 }, ErrInvalidGeometry},
		{"未知按钮", func(cfg *Config) { cfg.ButtonMapping["Turbo"] = "E" }, ErrUnknownButton},
		{"空按键映射", func(cfg *Config) { cfg.ButtonMapping = map[string]string{} }, ErrUnmappedAction},
		{"映射到空按键", func(cfg *Config) { cfg.ButtonMapping["B"] = "" }, ErrUnmappedAction},
		{"技能指向未映射动作", func(cfg *Config) { cfg.AbilityMapping["E"] = "B" }, ErrUnmappedAction},
		{"可瞄准动作未映射", func(cfg *Config) { cfg.AimableButtons = append(cfg.AimableButtons, "LT") }, ErrUnmappedAction},
		{"距离动作未映射", func(cfg *Config) { cfg.ActionDistances["B"] = "close" }, ErrUnmappedAction},
		{"非法队列顺序", func(cfg *Config) { cfg.Controller.DrainOrder = "random" }, ErrInvalidOption},
		{"非法手柄类型", func(cfg *Config) { cfg.Controller.ControllerType = "n64" }, ErrInvalidOption},
		{"非法输出后端", func(cfg *Config) { cfg.Output.Backend = "usb" }, ErrInvalidOption},
		{"主点击为空", func(cfg *Config) { cfg.Controller.PrimaryClick = "" }, ErrInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate(testButtons)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() 返回错误: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, 期望 %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Overlay.ScreenHeight = -1
	cfg.Controller.DrainOrder = "stack"
	err := cfg.Validate(testButtons)
	if !errors.Is(err, ErrInvalidGeometry) || !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("err=%v want both geometry and option errors", err)
	}
}

func TestParseEnvDefaults(t *testing.T) {
	e, err := ParseEnv()
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if e.ConfigPath != "configs/config.yaml" {
		t.Fatalf("ConfigPath=%q want configs/config.yaml", e.ConfigPath)
	}
	if e.DebugConsole {
		t.Fatal("DebugConsole should default to false")
	}
}

func TestParseEnvDebugConsole(t *testing.T) {
	t.Setenv("AIMPAD_DEBUG_CONSOLE", "true")
	e, err := ParseEnv()
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if !e.DebugConsole {
		t.Fatal("DebugConsole=false want true")
	}
}

func TestApplyEnvOverridesFile(t *testing.T) {
	t.Setenv("AIMPAD_LOG_LEVEL", "warn")
	t.Setenv("AIMPAD_OUTPUT", "log")
	t.Setenv("AIMPAD_DRAIN_ORDER", "fifo")

	e, err := ParseEnv()
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	cfg := validConfig()
	cfg.ApplyEnv(e)

	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level=%q want warn", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "auto" {
		t.Errorf("Logging.Format=%q want untouched auto", cfg.Logging.Format)
	}
	if cfg.Output.Backend != "log" {
		t.Errorf("Output.Backend=%q want log", cfg.Output.Backend)
	}
	if cfg.Controller.DrainOrder != "fifo" {
		t.Errorf("DrainOrder=%q want fifo", cfg.Controller.DrainOrder)
	}
}

func TestActionsAndAbilityKeysSorted(t *testing.T) {
	cfg := validConfig()
	actions := cfg.Actions()
	if strings.Join(actions, ",") != "A,RT,X" {
		t.Fatalf("Actions()=%v want [A RT X]", actions)
	}
	keys := cfg.AbilityKeys()
	if strings.Join(keys, ",") != "Q,W" {
		t.Fatalf("AbilityKeys()=%v want [Q W]", keys)
	}
}
