package runner

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"github.com/traefik/yaegi/stdlib/syscall"
	"github.com/traefik/yaegi/stdlib/unrestricted"
	"github.com/traefik/yaegi/stdlib/unsafe"
)

// entryPoints 按顺序查找的入口函数名
var entryPoints = []string{"Run", "run"}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// goEngine 使用 yaegi 解释执行 Go 源文件
type goEngine struct{}

func (goEngine) entryName() string {
	return "Run()"
}

func (goEngine) exec(path string) (result string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()

	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	pkg, err := packageName(path, src)
	if err != nil {
		return "", err
	}

	i := interp.New(interp.Options{
		Args:         []string{path},
		Env:          os.Environ(),
		Unrestricted: true,
	})
	for _, symbols := range []interp.Exports{stdlib.Symbols, unrestricted.Symbols, syscall.Symbols, unsafe.Symbols} {
		if err := i.Use(symbols); err != nil {
			return "", fmt.Errorf("failed to load symbols: %w", err)
		}
	}

	// 执行顶层代码（init 及 main 包的 main 函数）
	if _, err := i.Eval(string(src)); err != nil {
		return "", err
	}

	fn, ok := lookupEntry(i, pkg)
	if !ok {
		return "", ErrNoEntryPoint
	}
	return formatResults(fn.Call(nil))
}

// lookupEntry 先按裸名在刚求值的包作用域中查找，再回退到 pkg.Name
// main 包执行过 main() 后 "main.Run" 选择器不再可解析
func lookupEntry(i *interp.Interpreter, pkg string) (reflect.Value, bool) {
	for _, name := range entryPoints {
		for _, expr := range []string{name, pkg + "." + name} {
			v, err := i.Eval(expr)
			if err != nil || !v.IsValid() {
				continue
			}
			if v.Kind() == reflect.Func && v.Type().NumIn() == 0 {
				return v, true
			}
		}
	}
	return reflect.Value{}, false
}

// formatResults 将返回值转为文本；末尾的非空 error 视为执行失败
func formatResults(outs []reflect.Value) (string, error) {
	if n := len(outs); n > 0 && outs[n-1].Type().Implements(errorType) {
		if err := asError(outs[n-1]); err != nil {
			return "", err
		}
		outs = outs[:n-1]
	}

	switch len(outs) {
	case 0:
		return "nil", nil
	case 1:
		return repr(outs[0]), nil
	}
	parts := make([]string, len(outs))
	for i, v := range outs {
		parts[i] = repr(v)
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}

func asError(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	if err, ok := v.Interface().(error); ok {
		return err
	}
	return fmt.Errorf("%v", v.Interface())
}

func repr(v reflect.Value) string {
	if !v.IsValid() || !v.CanInterface() {
		return "nil"
	}
	if v.Kind() == reflect.Interface && v.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%#v", v.Interface())
}

func packageName(path string, src []byte) (string, error) {
	f, err := parser.ParseFile(token.NewFileSet(), path, src, parser.PackageClauseOnly)
	if err != nil {
		return "", err
	}
	return f.Name.Name, nil
}
