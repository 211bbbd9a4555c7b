package coverity

import (
	"context"
	"net/url"
)

// ListProjects returns every project visible to the user, with embedded
// streams, in server order. No projects is an empty slice, not an error.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var resp projectsResponse
	if err := c.getJSON(ctx, "/api/v2/projects", map[string]string{"includeStreams": "true"}, &resp); err != nil {
		return nil, err
	}
	if resp.Projects == nil {
		return []Project{}, nil
	}
	return resp.Projects, nil
}

// ListStreams returns the streams of projectName, or the global stream listing
// when projectName is empty. A missing project or one without streams yields
// an empty slice.
func (c *Client) ListStreams(ctx context.Context, projectName string) ([]Stream, error) {
	if projectName != "" {
		var resp projectsResponse
		path := "/api/v2/projects/" + url.PathEscape(projectName)
		if err := c.getJSON(ctx, path, map[string]string{"includeStreams": "true"}, &resp); err != nil {
			return nil, err
		}
		if len(resp.Projects) == 0 || resp.Projects[0].Streams == nil {
			return []Stream{}, nil
		}
		return resp.Projects[0].Streams, nil
	}

	var resp streamsResponse
	if err := c.getJSON(ctx, "/api/v2/streams", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Streams == nil {
		return []Stream{}, nil
	}
	return resp.Streams, nil
}
