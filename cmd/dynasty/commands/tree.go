package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/dynasty/classgen"
	"github.com/teranos/dynasty/errors"
)

var treeFormat string

// TreeCmd shows the declared class hierarchy
var TreeCmd = &cobra.Command{
	Use:   "tree [packages|files...]",
	Short: "Show the declared class hierarchy",
	Long: `Show the class hierarchy declared by dynasty directives, one tree per
package. Parents declared outside the package are marked external.

Examples:
  dynasty tree                   # Current package
  dynasty tree ./... -f json     # Whole module as JSON`,
	RunE: runTree,
}

func init() {
	TreeCmd.Flags().StringVarP(&treeFormat, "format", "f", "text", "Output format: text, json, yaml")
}

// packageTree is the hierarchy of one package.
type packageTree struct {
	Package string           `json:"package" yaml:"package"`
	Dir     string           `json:"dir" yaml:"dir"`
	Classes []*classgen.Node `json:"classes" yaml:"classes"`
}

func runTree(cmd *cobra.Command, args []string) error {
	_, gen, err := setup()
	if err != nil {
		return err
	}
	pkgs, err := classgen.Load("", args)
	if err != nil {
		return err
	}

	var trees []packageTree
	for _, pkg := range pkgs {
		outs, err := gen.ProcessPackage(pkg.Files)
		if err != nil {
			return err
		}
		roots := classgen.Hierarchy(outs)
		if len(roots) == 0 {
			continue
		}
		trees = append(trees, packageTree{Package: packageName(pkg, outs), Dir: pkg.Dir, Classes: roots})
	}

	return renderTrees(cmd.OutOrStdout(), trees, treeFormat)
}

// packageName falls back to the directory name for explicit file lists.
func packageName(pkg *classgen.Package, outs []*classgen.Output) string {
	if pkg.Name != "" {
		return pkg.Name
	}
	for _, o := range outs {
		if len(o.Decls) > 0 && o.Package != "" {
			return o.Package
		}
	}
	return filepath.Base(pkg.Dir)
}

func renderTrees(out io.Writer, trees []packageTree, format string) error {
	switch format {
	case "json":
		if trees == nil {
			trees = []packageTree{}
		}
		data, err := json.MarshalIndent(trees, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal tree to JSON")
		}
		fmt.Fprintln(out, string(data))

	case "yaml":
		data, err := yaml.Marshal(trees)
		if err != nil {
			return errors.Wrap(err, "failed to marshal tree to YAML")
		}
		fmt.Fprint(out, string(data))

	case "text":
		if len(trees) == 0 {
			fmt.Fprintln(out, "No annotated classes found")
			return nil
		}
		for _, t := range trees {
			root := pterm.TreeNode{Text: pterm.Bold.Sprint(t.Package) + pterm.Gray(" "+t.Dir)}
			for _, c := range t.Classes {
				root.Children = append(root.Children, treeNode(c))
			}
			rendered, err := pterm.DefaultTree.WithRoot(root).Srender()
			if err != nil {
				return errors.Wrap(err, "failed to render tree")
			}
			fmt.Fprint(out, rendered)
		}

	default:
		return errors.Newf("unsupported format: %s (supported: text, json, yaml)", format)
	}
	return nil
}

func treeNode(n *classgen.Node) pterm.TreeNode {
	text := n.Name
	if n.External {
		text += pterm.Gray(" (external)")
	} else {
		text += pterm.Gray(fmt.Sprintf(" %s:%d", filepath.Base(n.File), n.Line))
	}
	node := pterm.TreeNode{Text: text}
	for _, c := range n.Children {
		node.Children = append(node.Children, treeNode(c))
	}
	return node
}
