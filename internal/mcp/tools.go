package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "capacity_load",
		Description: "Reload both capacity datasets (product-only and product+size) from the backend. " +
			"Returns the ordered date axis and the selectable product codes. The current selection is kept. " +
			"Other tools load the data on first use, so call this only to pick up backend changes.",
	}, s.handleLoad)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "capacity_list_products",
		Description: "List the selectable product codes from both datasets, in first-appearance order.",
	}, s.handleListProducts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "capacity_list_sizes",
		Description: "List the sizes the product+size dataset carries for one product code.",
	}, s.handleListSizes)

	mcp.AddTool(server, &mcp.Tool{
		Name: "capacity_select_products",
		Description: "Replace the set of selected products. Every selected product counts as one combination and every " +
			"selected size as one more; at most 5 combinations are allowed. " +
			"If the change would exceed the limit it is NOT applied: the result carries a 'warning' and the unchanged selection. " +
			"Deselecting a product also drops its size selections.",
	}, s.handleSelectProducts)

	mcp.AddTool(server, &mcp.Tool{
		Name: "capacity_select_sizes",
		Description: "Replace the selected sizes of one already selected product. Subject to the same limit of 5 combinations; " +
			"a rejected change returns a 'warning' and the unchanged selection.",
	}, s.handleSelectSizes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "capacity_get_selection",
		Description: "Return the current selection, its combination count and the limit.",
	}, s.handleGetSelection)

	mcp.AddTool(server, &mcp.Tool{
		Name: "capacity_get_bundle",
		Description: "Return the ranked cards for one date of the axis (format DD-MM-YYYY). " +
			"Capacities are cumulative: each date's value adds all earlier dates of the series. " +
			"Product-only and product+size cards are ranked separately, lowest capacity first.",
	}, s.handleGetBundle)

	mcp.AddTool(server, &mcp.Tool{
		Name: "capacity_get_timeline",
		Description: "Return the adjusted (cumulative) capacity of every selected series over the whole date axis, " +
			"plus the ranked cards of each date. Set 'include_chart' for a Mermaid line chart.",
	}, s.handleGetTimeline)
}
