package writer

import "github.com/genaitools/testgen/pkg/types"

func conftestFor(fw types.Framework) string {
	switch fw {
	case types.FrameworkFlask:
		return flaskConftest
	case types.FrameworkDjango:
		return djangoConftest
	case types.FrameworkFastAPI:
		return fastapiConftest
	default:
		return generalConftest
	}
}

const flaskConftest = `import pytest
import sys
import os

sys.path.insert(0, os.path.dirname(os.path.dirname(os.path.abspath(__file__))))

try:
    from app import app
except ImportError:
    try:
        from main import app
    except ImportError:
        from flask import Flask

        app = Flask(__name__)

app.config.update({
    "TESTING": True,
    "SECRET_KEY": "test-secret-key",
    "WTF_CSRF_ENABLED": False,
})


@pytest.fixture()
def client():
    """A test client for the app."""
    return app.test_client()


@pytest.fixture()
def auth_headers():
    return {
        "Content-Type": "application/json",
        "Authorization": "Bearer test-token",
    }
`

const djangoConftest = `import pytest
import os
import sys

sys.path.insert(0, os.path.dirname(os.path.dirname(os.path.abspath(__file__))))

os.environ.setdefault("DJANGO_SETTINGS_MODULE", "settings")

import django
from django.conf import settings

if not settings.configured:
    settings.configure(
        DEBUG=True,
        SECRET_KEY="test-secret-key-for-testing-only",
        DATABASES={
            "default": {
                "ENGINE": "django.db.backends.sqlite3",
                "NAME": ":memory:",
            }
        },
        INSTALLED_APPS=[
            "django.contrib.auth",
            "django.contrib.contenttypes",
            "django.contrib.sessions",
        ],
        USE_TZ=True,
    )

django.setup()

from django.test import Client


@pytest.fixture
def client():
    return Client()
`

const fastapiConftest = `import pytest
import sys
import os
from fastapi.testclient import TestClient

sys.path.insert(0, os.path.dirname(os.path.dirname(os.path.abspath(__file__))))

try:
    from main import app
except ImportError:
    try:
        from app.main import app
    except ImportError:
        from fastapi import FastAPI

        app = FastAPI()


@pytest.fixture
def client():
    """FastAPI test client."""
    with TestClient(app) as test_client:
        yield test_client


@pytest.fixture
def auth_headers():
    return {
        "Content-Type": "application/json",
        "Authorization": "Bearer test-token",
    }
`

const generalConftest = `import pytest
import sys
import os

sys.path.insert(0, os.path.dirname(os.path.dirname(os.path.abspath(__file__))))


@pytest.fixture
def sample_data():
    """Sample data for testing."""
    return {
        "test_string": "hello world",
        "test_number": 42,
        "test_list": [1, 2, 3, 4, 5],
        "test_dict": {"key": "value"},
    }


@pytest.fixture
def temp_file(tmp_path):
    """Create a temporary file for testing."""
    file_path = tmp_path / "test_file.txt"
    file_path.write_text("test content")
    return str(file_path)
`

const djangoPytestIni = `[pytest]
DJANGO_SETTINGS_MODULE = settings
python_files = tests.py test_*.py *_tests.py
addopts = --tb=short --strict-markers
markers =
    django_db: mark test to use django database
`
