package htmldoc

import (
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/devicelab-dev/uicheck/pkg/core"
)

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	return htmlquery.ExistsAttr(n, name)
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != name {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

func toggleAttr(n *html.Node, name string) {
	if hasAttr(n, name) {
		removeAttr(n, name)
	} else {
		setAttr(n, name, name)
	}
}

func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// hiddenStyle reports display:none or visibility:hidden in an inline style.
func hiddenStyle(n *html.Node) bool {
	style := strings.ToLower(strings.ReplaceAll(attr(n, "style"), " ", ""))
	return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
}

// visible walks up the tree looking for anything that hides the node.
func visible(n *html.Node) bool {
	if n.Type == html.ElementNode && n.Data == "input" && strings.EqualFold(attr(n, "type"), "hidden") {
		return false
	}
	for p := n; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if hasAttr(p, "hidden") || hiddenStyle(p) {
			return false
		}
		switch p.Data {
		case "head", "script", "style", "template":
			return false
		}
	}
	return true
}

// disabled honours the disabled attribute on the node or an enclosing
// fieldset, and aria-disabled.
func disabled(n *html.Node) bool {
	if attr(n, "aria-disabled") == "true" {
		return true
	}
	for p := n; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if hasAttr(p, "disabled") && (p == n || p.Data == "fieldset") {
			return true
		}
	}
	return false
}

func interactable(n *html.Node, loc string) error {
	if !visible(n) {
		return core.ErrNotInteractable.WithMessagef("%s is not visible", loc)
	}
	if disabled(n) {
		return core.ErrNotInteractable.WithMessagef("%s is disabled", loc)
	}
	return nil
}

func optionNodes(sel *html.Node) []*html.Node {
	return htmlquery.Find(sel, ".//option")
}

// options lists the options of a select. A single select without an
// explicit selection has its first option selected.
func options(sel *html.Node) []core.Option {
	nodes := optionNodes(sel)
	out := make([]core.Option, len(nodes))
	selected := false
	for i, o := range nodes {
		text := strings.TrimSpace(htmlquery.InnerText(o))
		value := text
		if hasAttr(o, "value") {
			value = attr(o, "value")
		}
		out[i] = core.Option{Text: text, Value: value, Selected: hasAttr(o, "selected")}
		selected = selected || out[i].Selected
	}
	if !selected && len(out) > 0 && !hasAttr(sel, "multiple") {
		out[0].Selected = true
	}
	return out
}

func findOption(sel *html.Node, by core.SelectBy, key string) *html.Node {
	nodes := optionNodes(sel)
	switch by {
	case core.SelectByIndex:
		i, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || i < 1 || i > len(nodes) {
			return nil
		}
		return nodes[i-1]
	case core.SelectByValue:
		for _, o := range nodes {
			v := strings.TrimSpace(htmlquery.InnerText(o))
			if hasAttr(o, "value") {
				v = attr(o, "value")
			}
			if v == key {
				return o
			}
		}
	default:
		want := strings.Join(strings.Fields(key), " ")
		for _, o := range nodes {
			if strings.Join(strings.Fields(htmlquery.InnerText(o)), " ") == want {
				return o
			}
		}
	}
	return nil
}

// selectOption marks opt selected, clearing other selections unless the
// select is multiple.
func selectOption(sel, opt *html.Node) {
	if !hasAttr(sel, "multiple") {
		for _, o := range optionNodes(sel) {
			removeAttr(o, "selected")
		}
	}
	setAttr(opt, "selected", "selected")
}

func enclosingSelect(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "select" {
			return p
		}
	}
	return nil
}
