package monday

// DefaultPageLimit is the items_page size; 500 is the API maximum.
const DefaultPageLimit = 500

const statusColumnQuery = `
query StatusColumn($boardId: [ID!], $columns: [String!]) {
  boards(ids: $boardId) {
    columns(ids: $columns) { id title type settings_str }
  }
}`

const itemFields = `
      cursor
      items {
        id
        name
        assets { id name file_extension public_url url }
        column_values(ids: $columns) {
          id
          text
          ... on StatusValue { index label }
        }
      }`

const itemsPageQuery = `
query ItemsPage($boardId: [ID!], $limit: Int!, $columns: [String!]) {
  boards(ids: $boardId) {
    items_page(limit: $limit) {` + itemFields + `
    }
  }
}`

const nextItemsPageQuery = `
query NextItemsPage($cursor: String!, $limit: Int!, $columns: [String!]) {
  next_items_page(cursor: $cursor, limit: $limit) {` + itemFields + `
  }
}`

type column struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	SettingsStr string `json:"settings_str"`
}

type statusColumnData struct {
	Boards []struct {
		Columns []column `json:"columns"`
	} `json:"boards"`
}

type asset struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	FileExtension string `json:"file_extension"`
	PublicURL     string `json:"public_url"`
	URL           string `json:"url"`
}

type columnValue struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Index *int   `json:"index"`
	Label string `json:"label"`
}

type item struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Assets       []asset       `json:"assets"`
	ColumnValues []columnValue `json:"column_values"`
}

type itemsPage struct {
	Cursor string `json:"cursor"`
	Items  []item `json:"items"`
}

type itemsPageData struct {
	Boards []struct {
		ItemsPage itemsPage `json:"items_page"`
	} `json:"boards"`
}

type nextItemsPageData struct {
	NextItemsPage itemsPage `json:"next_items_page"`
}

// statusSettings is the decoded settings_str of a status column.
type statusSettings struct {
	Labels map[string]string `json:"labels"`
}
