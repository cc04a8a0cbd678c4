// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package resource

// Catalog holds the schemas of every managed entity type in menu order.
type Catalog struct {
	order  []*Schema
	byName map[string]*Schema
}

// NewCatalog builds a catalog from the given schemas. Later schemas with a
// duplicate name replace earlier ones.
func NewCatalog(schemas ...*Schema) *Catalog {
	c := &Catalog{byName: make(map[string]*Schema, len(schemas))}
	for _, s := range schemas {
		if _, dup := c.byName[s.Name]; !dup {
			c.order = append(c.order, s)
		} else {
			for i, existing := range c.order {
				if existing.Name == s.Name {
					c.order[i] = s
				}
			}
		}
		c.byName[s.Name] = s
	}
	return c
}

// Lookup finds a schema by its URL name.
func (c *Catalog) Lookup(name string) (*Schema, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// All returns the schemas in menu order.
func (c *Catalog) All() []*Schema {
	return c.order
}

// Image limits. Items are photographed on site and kept smaller.
const (
	defaultImageMax = 5 << 20
	itemImageMax    = 2 << 20
)

var defaultImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/svg+xml"}

func baseColumns() []Column {
	return []Column{
		{Key: ColImage, Label: "Image", Hideable: true},
		{Key: ColName, Label: "Name"},
		{Key: ColDescription, Label: "Description", Hideable: true},
	}
}

func tailColumns() []Column {
	return []Column{
		{Key: ColOrder, Label: "Order", Hideable: true},
		{Key: ColStatus, Label: "Status"},
	}
}

func columns(middle ...Column) []Column {
	cols := baseColumns()
	cols = append(cols, middle...)
	return append(cols, tailColumns()...)
}

// DefaultCatalog returns the schemas of the home-services marketplace:
// categories, sub-services, services, add-ons, projects, project items
// and items.
func DefaultCatalog() *Catalog {
	images := ImageRules{MaxBytes: defaultImageMax, AllowedTypes: defaultImageTypes}

	categories := &Schema{
		Name: "categories", Singular: "category",
		Label: "Categories", LabelSingular: "Category",
		Path:    "/categories",
		Columns: columns(),
		Image:   images,
	}

	categoryParent := func(required bool) *ParentRef {
		return &ParentRef{
			Schema: "categories", Label: "Category",
			WireKey:  "category_id",
			Aliases:  []string{"categoryId", "parent_id", "parentId"},
			Nested:   "category",
			NameKeys: []string{"category_name", "categoryName"},
			Required: required,
		}
	}
	categoryFilter := &FilterRef{Param: "category_id", Label: "Category", Schema: "categories"}

	subServices := &Schema{
		Name: "sub-services", Singular: "sub_service",
		Label: "Sub-services", LabelSingular: "Sub-service",
		Path:    "/sub-services",
		Parent:  categoryParent(true),
		Filter:  categoryFilter,
		Columns: columns(Column{Key: ColParent, Label: "Category", Hideable: true}),
		Image:   images,
	}

	services := &Schema{
		Name: "services", Singular: "service",
		Label: "Services", LabelSingular: "Service",
		Path:               "/services",
		Parent:             categoryParent(true),
		Filter:             categoryFilter,
		Priced:             true,
		RequireDescription: true,
		HasMetrics:         true,
		Sortable:           []SortKey{SortDisplayOrder, SortName, SortPrice, SortPopularity, SortBookings, SortRevenue},
		Columns: columns(
			Column{Key: ColParent, Label: "Category", Hideable: true},
			Column{Key: ColPrice, Label: "Price"},
			Column{Key: ColPopularity, Label: "Popularity", Hideable: true},
			Column{Key: ColBookings, Label: "Bookings", Hideable: true},
			Column{Key: ColRevenue, Label: "Revenue", Hideable: true},
		),
		Image: images,
	}

	addOns := &Schema{
		Name: "add-ons", Singular: "add_on",
		Label: "Add-ons", LabelSingular: "Add-on",
		Path:      "/add-ons",
		Filter:    &FilterRef{Param: "service_id", Label: "Service", Schema: "services"},
		AppliesTo: &FilterRef{Param: "applies_to", Label: "Applies to", Schema: "services"},
		Priced:    true,
		Columns: columns(
			Column{Key: ColPrice, Label: "Price"},
			Column{Key: ColAppliesTo, Label: "Applies to", Hideable: true},
		),
		Image: images,
	}

	projects := &Schema{
		Name: "projects", Singular: "project",
		Label: "Projects", LabelSingular: "Project",
		Path:               "/projects",
		RequireDescription: true,
		Columns:            columns(),
		Image:              images,
	}

	projectItems := &Schema{
		Name: "project-items", Singular: "project_item",
		Label: "Project items", LabelSingular: "Project item",
		Path: "/project-items",
		Parent: &ParentRef{
			Schema: "projects", Label: "Project",
			WireKey:  "project_id",
			Aliases:  []string{"projectId"},
			Nested:   "project",
			NameKeys: []string{"project_name", "projectName"},
			Required: true,
		},
		Filter:  &FilterRef{Param: "project_id", Label: "Project", Schema: "projects"},
		Columns: columns(Column{Key: ColParent, Label: "Project", Hideable: true}),
		Image:   images,
	}

	items := &Schema{
		Name: "items", Singular: "item",
		Label: "Items", LabelSingular: "Item",
		Path: "/items",
		Parent: &ParentRef{
			Schema: "project-items", Label: "Project item",
			WireKey:  "project_item_id",
			Aliases:  []string{"projectItemId"},
			Nested:   "project_item",
			NameKeys: []string{"project_item_name", "projectItemName"},
			Required: true,
		},
		Filter:  &FilterRef{Param: "project_item_id", Label: "Project item", Schema: "project-items"},
		Columns: columns(Column{Key: ColParent, Label: "Project item", Hideable: true}),
		Image:   ImageRules{MaxBytes: itemImageMax, AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"}},
	}

	return NewCatalog(categories, subServices, services, addOns, projects, projectItems, items)
}
