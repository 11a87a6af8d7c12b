package models

type TrelloLabel struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type TrelloCard struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	URL    string        `json:"url"`
	Closed bool          `json:"closed"`
	Labels []TrelloLabel `json:"labels"`
}

type TrelloList struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Cards []TrelloCard `json:"cards"`
}

type BoardInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListNames returns the names of lists in board order.
func ListNames(lists []TrelloList) []string {
	names := make([]string, 0, len(lists))
	for _, l := range lists {
		names = append(names, l.Name)
	}
	return names
}
