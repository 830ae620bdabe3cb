// Command embabel-tool-gen generates domain tool registrations for annotated methods.
//
// A method becomes a domain tool when its doc comment carries the marker line:
//
//	// embabel:llmTool
//	// Cancel the order with a reason.
//	func (o *Order) Cancel(ctx context.Context, reason string) error
//
// The marker may be followed by a tool name, as in "embabel:llmTool cancelOrder". For every
// file with annotated methods the generator writes <file>.embabel.go declaring one
// domain.Source per receiver type.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-openapi/swag"
	_ "github.com/joho/godotenv/autoload"
	"github.com/k0kubun/pp/v3"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
)

const (
	marker       = "embabel:llmTool"
	generatedExt = ".embabel.go"
	domainPkg    = "github.com/embabel/embabel-go/domain"
	toolPkg      = "github.com/embabel/embabel-go/tool"
)

var (
	log    zerolog.Logger
	osExit = os.Exit
)

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log = zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: slog.LevelDebug}),
	))
}

// toolFuncInfo is one annotated method.
type toolFuncInfo struct {
	name        string
	toolName    string
	receiver    string
	pointer     bool
	comments    []*ast.Comment
	params      []*ast.Field
	exportTools bool
}

// sourceInfo groups the annotated methods of one receiver type.
type sourceInfo struct {
	receiver    string
	pointer     bool
	methods     []toolFuncInfo
	exportTools bool
}

func main() {
	path := flag.String("path", envOr("EMBABEL_TOOLGEN_PATH", "."), "file or directory to scan")
	export := flag.Bool("export", envBool("EMBABEL_TOOLGEN_EXPORT"), "export the generated source variables")
	dump := flag.Bool("dump", false, "dump the collected tools")
	level := flag.String("log-level", envOr("EMBABEL_LOG_LEVEL", "info"), "log level")
	flag.Parse()

	if lvl, err := zerolog.ParseLevel(*level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", *level).Msg("Unknown log level, using info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	info, err := os.Stat(*path)
	if err != nil {
		log.Error().Err(err).Str("path", *path).Msg("Error accessing path")
		osExit(1)
		return
	}

	var files []string
	if info.IsDir() {
		err = filepath.WalkDir(*path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isSource(p) {
				return nil
			}
			files = append(files, p)
			return nil
		})
		if err != nil {
			log.Error().Err(err).Str("path", *path).Msg("Error accessing path")
			osExit(1)
			return
		}
	} else {
		files = append(files, *path)
	}

	var failed, generated int
	for _, file := range files {
		if *dump {
			dumpTools(file, *export)
		}
		ok, err := generate(file, *export)
		if err != nil {
			failed++
			continue
		}
		if ok {
			generated++
		}
	}

	summary := color.New(color.FgGreen)
	if failed > 0 {
		summary = color.New(color.FgRed)
	}
	summary.Fprintf(os.Stderr, "embabel-tool-gen: %d files scanned, %d generated, %d failed\n", len(files), generated, failed)
	if failed > 0 {
		osExit(1)
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func isSource(path string) bool {
	return strings.HasSuffix(path, ".go") &&
		!strings.HasSuffix(path, "_test.go") &&
		!strings.HasSuffix(path, generatedExt)
}

func dumpTools(path string, exportTools bool) {
	fileAST, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.ParseComments)
	if err != nil {
		return
	}
	for _, t := range collectTools(fileAST, exportTools) {
		pp.Fprintln(os.Stderr, map[string]any{
			"file":     path,
			"receiver": t.receiver,
			"pointer":  t.pointer,
			"method":   t.name,
			"tool":     t.toolName,
			"params":   paramNames(t.params),
		})
	}
}

// processGoFile generates the registrations for one file.
func processGoFile(path string, exportTools bool) error {
	_, err := generate(path, exportTools)
	return err
}

func generate(path string, exportTools bool) (bool, error) {
	fset := token.NewFileSet()
	fileAST, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("Error parsing file")
		return false, err
	}

	tools := collectTools(fileAST, exportTools)
	if len(tools) == 0 {
		log.Debug().Str("file", path).Msg("No tools found")
		return false, nil
	}

	var buf bytes.Buffer
	buf.WriteString("// Code generated by embabel-tool-gen. DO NOT EDIT.\n\n")
	if err := format.Node(&buf, token.NewFileSet(), createToolsFile(fileAST.Name.Name, tools)); err != nil {
		log.Error().Err(err).Str("file", path).Msg("Error formatting generated code")
		return false, err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("Error formatting generated code")
		return false, err
	}

	out := strings.TrimSuffix(path, ".go") + generatedExt
	if err := os.WriteFile(out, src, 0o644); err != nil {
		log.Error().Err(err).Str("file", out).Msg("Error writing file")
		return false, err
	}
	log.Info().Str("file", out).Int("tools", len(tools)).Msg("Generated file")
	return true, nil
}

// collectTools returns the annotated methods of fileAST in source order.
func collectTools(fileAST *ast.File, exportTools bool) []toolFuncInfo {
	var tools []toolFuncInfo
	for _, decl := range fileAST.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Doc == nil {
			continue
		}
		toolName, comments, annotated := parseDoc(fn.Doc)
		if !annotated {
			continue
		}
		if fn.Recv == nil || len(fn.Recv.List) == 0 {
			log.Warn().Str("func", fn.Name.Name).Msg("Skipping annotated function without receiver")
			continue
		}
		receiver, pointer, ok := receiverType(fn.Recv.List[0].Type)
		if !ok {
			log.Warn().Str("func", fn.Name.Name).Msg("Skipping method with unsupported receiver")
			continue
		}
		if toolName == "" {
			toolName = swag.ToJSONName(fn.Name.Name)
		}
		tools = append(tools, toolFuncInfo{
			name:        fn.Name.Name,
			toolName:    toolName,
			receiver:    receiver,
			pointer:     pointer,
			comments:    comments,
			params:      fn.Type.Params.List,
			exportTools: exportTools,
		})
	}
	return tools
}

// parseDoc finds the marker in doc and returns the tool name it carries and the remaining
// comment lines.
func parseDoc(doc *ast.CommentGroup) (string, []*ast.Comment, bool) {
	var (
		name      string
		annotated bool
		comments  []*ast.Comment
	)
	for _, c := range doc.List {
		text := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
		if rest, ok := strings.CutPrefix(text, marker); ok && (rest == "" || rest[0] == ' ') {
			annotated = true
			name = strings.TrimSpace(rest)
			continue
		}
		comments = append(comments, c)
	}
	return name, comments, annotated
}

func receiverType(expr ast.Expr) (string, bool, bool) {
	pointer := false
	if star, ok := expr.(*ast.StarExpr); ok {
		pointer = true
		expr = star.X
	}
	ident, ok := expr.(*ast.Ident)
	if !ok {
		return "", false, false
	}
	return ident.Name, pointer, true
}

func description(comments []*ast.Comment) string {
	lines := make([]string, 0, len(comments))
	for _, c := range comments {
		if text := strings.TrimSpace(strings.TrimPrefix(c.Text, "//")); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, " ")
}

func paramNames(fields []*ast.Field) []string {
	var names []string
	for _, f := range fields {
		if isContext(f.Type) {
			continue
		}
		if len(f.Names) == 0 {
			return nil
		}
		for _, n := range f.Names {
			names = append(names, n.Name)
		}
	}
	return names
}

func isContext(expr ast.Expr) bool {
	sel, ok := expr.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	pkg, ok := sel.X.(*ast.Ident)
	return ok && pkg.Name == "context" && sel.Sel.Name == "Context"
}

func groupSources(tools []toolFuncInfo) []sourceInfo {
	index := make(map[string]int)
	var sources []sourceInfo
	for _, t := range tools {
		key := t.receiver
		if t.pointer {
			key = "*" + key
		}
		i, ok := index[key]
		if !ok {
			i = len(sources)
			index[key] = i
			sources = append(sources, sourceInfo{receiver: t.receiver, pointer: t.pointer, exportTools: t.exportTools})
		}
		sources[i].methods = append(sources[i].methods, t)
	}
	sort.SliceStable(sources, func(i, j int) bool { return sources[i].receiver < sources[j].receiver })
	return sources
}

// createToolsFile builds the generated file: the imports and one source variable per receiver.
func createToolsFile(pkgName string, toolFuncs []toolFuncInfo) *ast.File {
	file := &ast.File{
		Name: ast.NewIdent(pkgName),
		Decls: []ast.Decl{
			&ast.GenDecl{
				Tok:    token.IMPORT,
				Lparen: 1,
				Specs: []ast.Spec{
					&ast.ImportSpec{Path: stringLit(domainPkg)},
					&ast.ImportSpec{Path: stringLit(toolPkg)},
				},
			},
		},
	}
	for _, src := range groupSources(toolFuncs) {
		file.Decls = append(file.Decls, createSourceVariableAST(src))
	}
	return file
}

func variableName(src sourceInfo) string {
	if src.exportTools {
		return swag.ToGoName(src.receiver) + "DomainTools"
	}
	return swag.ToVarName(src.receiver) + "DomainTools"
}

func receiverExpr(src sourceInfo) ast.Expr {
	if src.pointer {
		return &ast.StarExpr{X: ast.NewIdent(src.receiver)}
	}
	return ast.NewIdent(src.receiver)
}

// createSourceVariableAST declares
//
//	var orderDomainTools = domain.NewSource[*Order](domain.Method((*Order).Cancel, ...), ...)
func createSourceVariableAST(src sourceInfo) ast.Decl {
	args := make([]ast.Expr, 0, len(src.methods))
	for _, m := range src.methods {
		args = append(args, createMethodAST(src, m))
	}

	kind := src.receiver
	if src.pointer {
		kind = "*" + kind
	}
	return &ast.GenDecl{
		Tok: token.VAR,
		Doc: &ast.CommentGroup{List: []*ast.Comment{
			{Text: fmt.Sprintf("// %s registers the LLM tools of %s.", variableName(src), kind)},
		}},
		Specs: []ast.Spec{
			&ast.ValueSpec{
				Names: []*ast.Ident{ast.NewIdent(variableName(src))},
				Values: []ast.Expr{&ast.CallExpr{
					Fun: &ast.IndexExpr{
						X:     selector("domain", "NewSource"),
						Index: receiverExpr(src),
					},
					Args: args,
				}},
			},
		},
	}
}

func createMethodAST(src sourceInfo, m toolFuncInfo) ast.Expr {
	recv := receiverExpr(src)
	if src.pointer {
		recv = &ast.ParenExpr{X: recv}
	}
	args := []ast.Expr{
		&ast.SelectorExpr{X: recv, Sel: ast.NewIdent(m.name)},
		&ast.CallExpr{Fun: selector("tool", "Name"), Args: []ast.Expr{stringLit(m.toolName)}},
	}
	if desc := description(m.comments); desc != "" {
		args = append(args, &ast.CallExpr{Fun: selector("tool", "Description"), Args: []ast.Expr{stringLit(desc)}})
	}
	if names := paramNames(m.params); len(names) > 0 {
		params := make([]ast.Expr, len(names))
		for i, n := range names {
			params[i] = stringLit(n)
		}
		args = append(args, &ast.CallExpr{Fun: selector("tool", "Params"), Args: params})
	}
	return &ast.CallExpr{Fun: selector("domain", "Method"), Args: args}
}

func selector(pkg, name string) *ast.SelectorExpr {
	return &ast.SelectorExpr{X: ast.NewIdent(pkg), Sel: ast.NewIdent(name)}
}

func stringLit(s string) *ast.BasicLit {
	return &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(s)}
}
