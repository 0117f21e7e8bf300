package util

import (
	"errors"
	"fmt"
	"net"
	"os/exec"
	"runtime"
	"strconv"
)

// browserCommands 按优先级返回各平台打开 URL 的命令
func browserCommands(goos, url string) [][]string {
	switch goos {
	case "windows":
		// rundll32 兼容 Windows 7 到 11，explorer 作为降级方案
		return [][]string{
			{"rundll32", "url.dll,FileProtocolHandler", url},
			{"explorer", url},
		}
	case "darwin":
		return [][]string{{"open", url}}
	default:
		return [][]string{
			{"xdg-open", url},
			{"google-chrome", url},
			{"firefox", url},
			{"chromium-browser", url},
			{"sensible-browser", url},
		}
	}
}

// OpenBrowser 打开默认浏览器，依次尝试各平台的候选命令
func OpenBrowser(url string) error {
	var errs []error
	for _, args := range browserCommands(runtime.GOOS, url) {
		err := exec.Command(args[0], args[1:]...).Start()
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("failed to open browser: %w", errors.Join(errs...))
}

// LocalURL 本机访问地址，监听全部网卡时使用 localhost
func LocalURL(host string, port int) string {
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}
