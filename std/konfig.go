package std

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/fsnotify/fsnotify"
	"github.com/ichaly/gormql/log"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Konfig 配置管理器，包装了koanf.Koanf，并集成了配置文件监听功能
type Konfig struct {
	k            unsafe.Pointer       // 底层koanf实例，使用原子指针操作确保并发安全
	options      *konfigOptions       // 配置选项
	watcher      *fsnotify.Watcher    // 文件监视器
	callbacks    []func(*koanf.Koanf) // 配置变更回调函数列表
	mu           sync.RWMutex         // 互斥锁
	stopChan     chan struct{}        // 停止信号通道
	debounceTime time.Duration        // 防抖时间
}

// KonfigOption 定义配置选项函数类型
type KonfigOption func(*konfigOptions)

// konfigOptions 保存koanf的配置选项
type konfigOptions struct {
	configType string
	envPrefix  string
	filePath   string
	delim      string
}

// WithFilePath 设置配置文件路径
func WithFilePath(filePath string) KonfigOption {
	return func(options *konfigOptions) {
		if filePath != "" {
			options.filePath = filePath
			ext := filepath.Ext(filePath)
			options.configType = strings.TrimPrefix(ext, ".")
		}
	}
}

// WithEnvPrefix 设置环境变量前缀
func WithEnvPrefix(prefix string) KonfigOption {
	return func(options *konfigOptions) {
		options.envPrefix = prefix
	}
}

// WithDelimiter 设置配置项分隔符
func WithDelimiter(delim string) KonfigOption {
	return func(options *konfigOptions) {
		options.delim = delim
	}
}

// NewKonfig 创建新的配置管理器
func NewKonfig(opts ...KonfigOption) (*Konfig, error) {
	// 初始化选项
	options := &konfigOptions{
		configType: "yaml", // 默认使用yaml
		envPrefix:  "APP",
		delim:      ".",
	}
	for _, opt := range opts {
		opt(options)
	}

	k := koanf.NewWithConf(koanf.Conf{Delim: options.delim})
	k.Set("mode", "dev")

	konfig := &Konfig{
		options:      options,
		callbacks:    make([]func(*koanf.Koanf), 0),
		debounceTime: 100 * time.Millisecond,
	}
	atomic.StorePointer(&konfig.k, unsafe.Pointer(k))

	// 加载环境变量文件(可选)
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("加载环境变量文件: %w", err)
	}

	// 如果提供了配置文件路径，加载配置
	if options.filePath != "" {
		if err := loadConfigFile(k, options.filePath, options); err != nil {
			return nil, err
		}
	}

	// 环境变量覆盖文件配置
	envProvider := env.Provider(options.envPrefix+"_", options.delim, func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, options.envPrefix+"_")), "_", options.delim, -1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("加载环境变量失败: %w", err)
	}

	return konfig, nil
}

// loadEnvFile 加载环境变量文件(可选)
func loadEnvFile() error {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		// .env 文件不存在,跳过加载
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("加载.env文件失败: %w", err)
	}
	return nil
}

// loadConfigFile 加载配置文件
func loadConfigFile(k *koanf.Koanf, filePath string, options *konfigOptions) error {
	var parser koanf.Parser
	switch options.configType {
	case "yaml", "yml":
		parser = yaml.Parser()
	default:
		return fmt.Errorf("不支持的配置文件类型: %s", options.configType)
	}

	if err := k.Load(file.Provider(filePath), parser); err != nil {
		return fmt.Errorf("加载配置文件失败: %w", err)
	}

	log.Info().Str("file", filePath).Msg("配置文件已加载")
	return nil
}

// loadKoanf 安全获取当前koanf实例
func (my *Konfig) loadKoanf() *koanf.Koanf {
	return (*koanf.Koanf)(atomic.LoadPointer(&my.k))
}

// GetKoanf 获取底层koanf实例
func (my *Konfig) GetKoanf() *koanf.Koanf {
	return my.loadKoanf()
}

// Get 获取配置项
func (my *Konfig) Get(path string) interface{} {
	return my.loadKoanf().Get(path)
}

// Set 设置配置项
func (my *Konfig) Set(path string, value interface{}) {
	my.loadKoanf().Set(path, value)
}

// IsSet 判断配置项是否存在
func (my *Konfig) IsSet(path string) bool {
	return my.loadKoanf().Exists(path)
}

// GetString 获取字符串配置
func (my *Konfig) GetString(path string) string {
	return my.loadKoanf().String(path)
}

// GetBool 获取布尔配置
func (my *Konfig) GetBool(path string) bool {
	return my.loadKoanf().Bool(path)
}

// GetInt 获取整数配置
func (my *Konfig) GetInt(path string) int {
	return my.loadKoanf().Int(path)
}

// GetStringSlice 获取字符串切片配置
func (my *Konfig) GetStringSlice(path string) []string {
	return my.loadKoanf().Strings(path)
}

// GetStringMapString 获取字符串映射配置
func (my *Konfig) GetStringMapString(path string) map[string]string {
	return my.loadKoanf().StringMap(path)
}

// SetDefault 设置默认值(仅当不存在时)
func (my *Konfig) SetDefault(path string, value interface{}) {
	k := my.loadKoanf()
	if !k.Exists(path) {
		k.Set(path, value)
	}
}

// Unmarshal 解析全部配置到结构体
func (my *Konfig) Unmarshal(val interface{}) error {
	return my.loadKoanf().UnmarshalWithConf("", val, koanf.UnmarshalConf{Tag: "mapstructure"})
}

// UnmarshalKey 解析指定路径配置到结构体
func (my *Konfig) UnmarshalKey(path string, val interface{}) error {
	return my.loadKoanf().UnmarshalWithConf(path, val, koanf.UnmarshalConf{Tag: "mapstructure"})
}

// WatchConfig 启动配置文件监听
func (my *Konfig) WatchConfig() error {
	my.mu.Lock()
	defer my.mu.Unlock()

	if my.options.filePath == "" {
		return fmt.Errorf("未配置文件路径，无法监听")
	}
	if my.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监视器失败: %w", err)
	}
	if err = watcher.Add(my.options.filePath); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("监听配置文件失败: %w", err)
	}

	my.watcher = watcher
	my.stopChan = make(chan struct{})
	go my.watchConfigChanges()
	return nil
}

// watchConfigChanges 处理文件变更事件，带防抖
func (my *Konfig) watchConfigChanges() {
	var timer *time.Timer
	for {
		select {
		case event, ok := <-my.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(my.debounceTime, my.reloadConfig)
		case err, ok := <-my.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("配置文件监听出错")
		case <-my.stopChan:
			return
		}
	}
}

// reloadConfig 重新加载配置文件并通知回调
func (my *Konfig) reloadConfig() {
	k := koanf.NewWithConf(koanf.Conf{Delim: my.options.delim})
	if err := loadConfigFile(k, my.options.filePath, my.options); err != nil {
		log.Warn().Err(err).Msg("重新加载配置失败")
		return
	}

	atomic.StorePointer(&my.k, unsafe.Pointer(k))

	my.mu.RLock()
	callbacks := my.callbacks
	my.mu.RUnlock()
	for _, cb := range callbacks {
		cb(k)
	}
}

// StopWatch 停止配置文件监听
func (my *Konfig) StopWatch() {
	my.mu.Lock()
	defer my.mu.Unlock()
	if my.watcher == nil {
		return
	}
	close(my.stopChan)
	_ = my.watcher.Close()
	my.watcher = nil
}

// OnConfigChange 注册配置变更回调
func (my *Konfig) OnConfigChange(callback func(*koanf.Koanf)) {
	my.mu.Lock()
	defer my.mu.Unlock()
	my.callbacks = append(my.callbacks, callback)
}
