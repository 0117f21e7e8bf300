package runner

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// noEntrySentinel 入口函数缺失时 harness 写到 stdout 的标记
// 脚本的 print 输出被重定向到 stderr，repr 结果总带引号或括号，不会与之混淆
const noEntrySentinel = "<<datapreview:no-entry>>"

// pythonHarness 以模块方式加载脚本并调用 run()
// 脚本自身的 stdout 被重定向到 stderr，stdout 只输出 repr 结果
const pythonHarness = `import importlib.util, sys
out = sys.stdout
sentinel = sys.argv[2]
sys.stdout = sys.stderr
spec = importlib.util.spec_from_file_location("execute_module", sys.argv[1])
module = importlib.util.module_from_spec(spec)
spec.loader.exec_module(module)
fn = getattr(module, "run", None)
if not callable(fn):
    out.write(sentinel)
    sys.exit(0)
out.write(repr(fn()))
`

// pythonEngine 通过子进程执行 Python 脚本
type pythonEngine struct {
	interpreter string
}

func (pythonEngine) entryName() string {
	return "run()"
}

func (e pythonEngine) exec(path string) (string, error) {
	interpreter := e.interpreter
	if interpreter == "" {
		interpreter = "python3"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(interpreter, "-c", pythonHarness, path, noEntrySentinel)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := lastLine(stderr.String()); msg != "" {
				return "", errors.New(msg)
			}
		}
		return "", fmt.Errorf("%s: %w", interpreter, err)
	}
	if stdout.String() == noEntrySentinel {
		return "", ErrNoEntryPoint
	}
	return stdout.String(), nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
